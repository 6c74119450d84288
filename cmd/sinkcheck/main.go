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
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/awslabs/sinkcheck/cmd/sinkcheck/harness"
	"github.com/awslabs/sinkcheck/cmd/sinkcheck/scan"
	"github.com/awslabs/sinkcheck/cmd/sinkcheck/tools"
)

const usage = `sinkcheck: detection of injection, unsafe deserialization and XXE sinks in Java sources
Usage:
  sinkcheck [tool] [options] <Java file or directory path(s)>
Tools:
  - scan: reports the vulnerable sink calls of the source files
  - test: checks the verdicts of the scanner against <expect-error> and <no-error> markers of fixture files
Examples:
  Scan a source tree: sinkcheck scan -config config.yaml src/main/java
  Run the fixtures: sinkcheck test checkers/java`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(tools.Version)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "scan":
		flags, err := scan.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if _, err := scan.Run(ctx, flags); err != nil {
			errExit(err)
		}
	case "test":
		flags, err := harness.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		report, err := harness.Run(ctx, flags)
		if err != nil {
			errExit(err)
		}
		if !report.OK() {
			stop()
			os.Exit(2)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	hint := tools.HintForErrorMessage(err.Error())
	if hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(2)
}
