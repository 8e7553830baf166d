/*
Constrain-server starts an HTTP token-masking service and begins listening
for connections.

Usage:

	constrain-server [flags]

The flags are:

	-v, --version
		Give the current version of the program and then exit.

	-c, --config FILE
		Path to a TOML config file. Defaults to "constrain-server.toml" in the
		current working directory.

If the config file does not set a token_secret, one is generated randomly
and logged as a warning, since tokens issued with it become invalid as soon
as the server shuts down.
*/
package main

import (
	"crypto/rand"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/dekarrin/constrain/internal/daemoncfg"
	"github.com/dekarrin/constrain/internal/httpapi"
	"github.com/dekarrin/constrain/internal/version"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of the program and then exit.")
	flagConfig  = pflag.StringP("config", "c", "constrain-server.toml", "Path to the TOML config file.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("constrain-server (constrain v%s)\n", version.Current)
		return
	}

	cfg, err := daemoncfg.Load(*flagConfig)
	if err != nil {
		log.Fatalf("FATAL could not load config: %s", err.Error())
	}
	cfg = cfg.FillDefaults()

	var secret []byte
	if cfg.TokenSecret != "" {
		secret = []byte(cfg.TokenSecret)
		for len(secret) < daemoncfg.MinSecretSize {
			doubled := make([]byte, len(secret)*2)
			copy(doubled, secret)
			copy(doubled[len(secret):], secret)
			secret = doubled
		}
	} else {
		secret = make([]byte, daemoncfg.MaxSecretSize)
		if _, err := rand.Read(secret); err != nil {
			log.Fatalf("FATAL could not generate token secret: %s", err.Error())
		}
		log.Printf("WARN  Using generated token secret; all tokens issued will become invalid at shutdown")
	}
	cfg.TokenSecret = string(secret)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("FATAL invalid config: %s", err.Error())
	}

	store, err := cfg.DB.Connect()
	if err != nil {
		log.Fatalf("FATAL could not connect to database: %s", err.Error())
	}
	defer store.Close()

	passHash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("FATAL could not hash admin password: %s", err.Error())
	}

	api := httpapi.API{
		Store:             store,
		Sessions:          httpapi.NewSessionRegistry(),
		AdminSecret:       secret,
		AdminPasswordHash: passHash,
		UnauthDelay:       cfg.UnauthDelay(),
	}

	log.Printf("INFO  Starting constrain-server %s on %s...", version.Current, cfg.ListenAddress)
	if err := http.ListenAndServe(cfg.ListenAddress, api.Router()); err != nil {
		log.Fatalf("FATAL server stopped: %s", err.Error())
		os.Exit(1)
	}
}
