// Copyright (c) 2026 The batchmint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:   "data-dir",
		Value:  defaultDataDir(),
		Usage:  "directory for the accounting database",
		EnvVar: "BATCHMINT_DATA_DIR",
	}
	apiAddrFlag = cli.StringFlag{
		Name:   "api-addr",
		Value:  "localhost:8669",
		Usage:  "API service listening address",
		EnvVar: "BATCHMINT_API_ADDR",
	}
	apiCorsFlag = cli.StringFlag{
		Name:   "api-cors",
		Value:  "",
		Usage:  "comma-separated list of domains from which to accept cross origin requests to API",
		EnvVar: "BATCHMINT_API_CORS",
	}
	genesisFlag = cli.StringFlag{
		Name:   "genesis",
		Usage:  "path of the genesis file, required for a fresh database",
		EnvVar: "BATCHMINT_GENESIS",
	}
	verbosityFlag = cli.IntFlag{
		Name:   "verbosity",
		Value:  3,
		Usage:  "log verbosity (0-5)",
		EnvVar: "BATCHMINT_VERBOSITY",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:   "enable-metrics",
		Usage:  "serve prometheus metrics at /metrics",
		EnvVar: "BATCHMINT_ENABLE_METRICS",
	}
)
