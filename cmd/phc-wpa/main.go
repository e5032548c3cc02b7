// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jholder85638/phc/analysis/config"
	"github.com/jholder85638/phc/analysis/mir"
	"github.com/jholder85638/phc/analysis/passes"
	"github.com/jholder85638/phc/analysis/wpa"
	"github.com/jholder85638/phc/internal/formatutil"
	log "github.com/sirupsen/logrus"
)

const usage = `phc-wpa: whole-program optimizer for lowered scripts
Usage:
  phc-wpa [options] <script.yaml>
Options:
`

func main() {
	configPath := flag.String("config", "", "config file path (yaml)")
	verbose := flag.Bool("verbose", false, "verbose mode: print debug messages")
	quiet := flag.Bool("quiet", false, "only print the optimized program")
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if flag.NArg() != 1 {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *configPath, *verbose, *quiet); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(scriptPath string, configPath string, verbose bool, quiet bool) error {
	cfg := config.NewDefault()
	if configPath != "" {
		config.SetGlobalConfig(configPath)
		loaded, err := config.LoadGlobal()
		if err != nil {
			return err
		}
		cfg = loaded
		log.Debugf("loaded config from %s", configPath)
	}
	if verbose && cfg.LogLevel < int(config.DebugLevel) {
		cfg.LogLevel = int(config.DebugLevel)
	}

	data, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("could not read script: %w", err)
	}
	script, err := mir.DecodeScript(data)
	if err != nil {
		return fmt.Errorf("could not decode script %s: %w", scriptPath, err)
	}
	log.Infof("loaded %s: %d methods, entry %s",
		scriptPath, len(script.MethodNames()), cfg.EntryMethod)

	logger := config.NewLogGroup(cfg)
	program := wpa.NewProgram(script)
	whole := wpa.NewWholeProgram(program, cfg, logger)
	if err := whole.Run(passes.NewDefaultManager(logger)); err != nil {
		if wpa.IsUnsupported(err) {
			return fmt.Errorf("aborting: %w", err)
		}
		return err
	}
	log.Infof("analysis converged")

	printScript(script, quiet)
	return nil
}

// printScript writes the optimized program to standard output, one method at a
// time in definition order.
func printScript(script *mir.Script, quiet bool) {
	for _, name := range script.MethodNames() {
		m := script.Lookup(name)
		fmt.Println(formatutil.Bold(m.String()) + " {")
		for _, stmt := range m.Statements {
			fmt.Printf("    %s\n", stmt)
		}
		fmt.Println("}")
		if !quiet {
			fmt.Println(formatutil.Faint(
				fmt.Sprintf("// %s: %d statements", name, len(m.Statements))))
		}
	}
}
