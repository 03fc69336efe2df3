// Package config provides configuration loading for reactivectl and the
// devtools server.
//
// Configuration is read from reactive.json in the working directory, then
// overridden by REACTIVE_* environment variables.
//
// # Configuration File Structure
//
//	{
//	  "production": false,
//	  "sortedNotify": true,
//	  "augment": "delegate",
//	  "logLevel": "info",
//	  "devtools": {
//	    "addr": "localhost:7070"
//	  },
//	  "metrics": {
//	    "namespace": "reactive"
//	  },
//	  "snapshot": {
//	    "backend": "s3",
//	    "s3": {
//	      "bucket": "state-snapshots",
//	      "region": "us-east-1"
//	    }
//	  }
//	}
//
// # Environment
//
// Every field has a REACTIVE_* override, for example REACTIVE_PRODUCTION,
// REACTIVE_AUGMENT, REACTIVE_DEVTOOLS_ADDR or REACTIVE_S3_BUCKET. S3
// credentials are only read from the environment.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rt := observer.New(append(cfg.RuntimeOptions(), observer.WithLogger(cfg.Logger(os.Stderr)))...)
package config
