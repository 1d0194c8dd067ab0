package config

type AppConfig struct {
	Server     ServerConfig
	Session    SessionConfig
	Tournament TournamentConfig
	Push       PushConfig
	Log        LogConfig
}

// LoadApp reads the remaining sections around an already loaded log config,
// which main needs before anything else can log.
func LoadApp(logCfg LogConfig) (AppConfig, error) {
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	sessionCfg, err := LoadSession()
	if err != nil {
		return AppConfig{}, err
	}
	tournamentCfg, err := LoadTournament()
	if err != nil {
		return AppConfig{}, err
	}
	pushCfg, err := LoadPush()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server:     serverCfg,
		Session:    sessionCfg,
		Tournament: tournamentCfg,
		Push:       pushCfg,
		Log:        logCfg,
	}, nil
}
