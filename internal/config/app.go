package config

type AppConfig struct {
	Client ClientConfig
	Store  StoreConfig
	HTTP   HTTPConfig
	Log    LogConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	clientCfg, err := LoadClient()
	if err != nil {
		return AppConfig{}, err
	}
	storeCfg, err := LoadStore()
	if err != nil {
		return AppConfig{}, err
	}
	httpCfg, err := LoadHTTP()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Client: clientCfg,
		Store:  storeCfg,
		HTTP:   httpCfg,
		Log:    logCfg,
	}, nil
}
