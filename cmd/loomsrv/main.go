/*
Loomsrv starts an HTTP host for the loom engine and begins listening for new
connections.

Usage:

	loomsrv [flags]
	loomsrv [flags] -c CONFIG_FILE

Once started, the server listens for HTTP requests under /v1/ and responds
using a REST-ish JSON protocol: POST /v1/auth to exchange a bootstrap secret
for a bearer token, POST /v1/programs to load a program into a new session,
then POST .../step, GET .../state, GET .../query, and GET .../dump against
that session's id.

If no bootstrap secret is given, one is generated and printed once at
startup; it cannot be recovered after that, so production deployments
should always set one explicitly.

The flags are:

	-v, --version
		Give the current version of loom and then exit.

	-c, --config FILE
		Load server configuration from the given TOML file.

	-l, --listen ADDRESS
		Listen on the given address, overriding the config file's
		listen_address if both are given.

	-s, --secret SECRET
		Use the given bootstrap secret, overriding the config file's
		bootstrap_secret if both are given.
*/
package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"os"

	"github.com/holsten/loom/internal/version"
	"github.com/holsten/loom/server"
	"github.com/spf13/pflag"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of loom and then exit.")
	flagConfig  = pflag.StringP("config", "c", "", "Load server configuration from the given TOML file.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret  = pflag.StringP("secret", "s", "", "Use the given bootstrap secret.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	var cfg server.Config
	if *flagConfig != "" {
		var err error
		cfg, err = server.LoadConfigFile(*flagConfig)
		if err != nil {
			log.Fatalf("FATAL could not load config: %s", err.Error())
		}
	}

	if *flagListen != "" {
		cfg.ListenAddress = *flagListen
	}
	if *flagSecret != "" {
		cfg.BootstrapSecret = *flagSecret
	}
	cfg = cfg.FillDefaults()

	if cfg.BootstrapSecret == "" {
		secretBytes := make([]byte, 24)
		if _, err := rand.Read(secretBytes); err != nil {
			log.Fatalf("FATAL could not generate bootstrap secret: %s", err.Error())
		}
		cfg.BootstrapSecret = base64.RawURLEncoding.EncodeToString(secretBytes)
		log.Printf("WARN  no bootstrap secret configured; generated one for this run only: %s", cfg.BootstrapSecret)
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("FATAL could not start server: %s", err.Error())
	}

	log.Printf("INFO  Starting loomsrv %s...", version.Current)
	if err := srv.ListenAndServe(cfg.ListenAddress); err != nil {
		log.Fatalf("FATAL server stopped: %s", err.Error())
		os.Exit(1)
	}
}
