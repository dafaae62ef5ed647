package config

import "testing"

func setServerEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SERVER_HOSTNAME", "localhost")
	t.Setenv("PORT", "8443")
	t.Setenv("SERVER_SELF_SIGNED_CERT_PATH", "/tmp/cert.pem")
	t.Setenv("SERVER_PRIVATE_KEY_PATH", "/tmp/key.pem")
	t.Setenv("SERVER_LOGFILE_PATH", "/tmp/server.log")
	t.Setenv("THE_QUESTION", "do you approve?")
	t.Setenv("NUM_PARTICIPANTS", "3")
}

func TestLoadServerConfig(t *testing.T) {
	setServerEnv(t)

	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("LoadServerConfig: %v", err)
	}
	if cfg.ServerHostname != "localhost" || cfg.Port != 8443 {
		t.Fatalf("unexpected hostname/port: %+v", cfg)
	}
	if cfg.NumParticipants != 3 {
		t.Fatalf("NumParticipants = %d, want 3", cfg.NumParticipants)
	}
}

func TestLoadServerConfigMissingRequired(t *testing.T) {
	setServerEnv(t)
	t.Setenv("THE_QUESTION", "")

	if _, err := LoadServerConfig(); err == nil {
		t.Fatal("expected error for missing THE_QUESTION")
	}
}

func TestLoadServerConfigRejectsTooFewParticipants(t *testing.T) {
	setServerEnv(t)
	t.Setenv("NUM_PARTICIPANTS", "1")

	if _, err := LoadServerConfig(); err == nil {
		t.Fatal("expected error for NUM_PARTICIPANTS < 2")
	}
}

func TestLoadClientConfig(t *testing.T) {
	t.Setenv("SERVER_HOSTNAME", "localhost")
	t.Setenv("PORT", "8443")
	t.Setenv("CLIENT_SELF_SIGNED_CERT_PATH", "/tmp/cert.pem")
	t.Setenv("CLIENT_LOGFILE_PATH", "/tmp/client.log")
	t.Setenv("PARTICIPANTS_NUMBER", "3")

	cfg, err := LoadClientConfig()
	if err != nil {
		t.Fatalf("LoadClientConfig: %v", err)
	}
	if cfg.ParticipantsNumber != 3 {
		t.Fatalf("ParticipantsNumber = %d, want 3", cfg.ParticipantsNumber)
	}
}
