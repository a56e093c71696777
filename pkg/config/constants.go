package config

const (
	EnvPrefix = "INSIGHTS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)
