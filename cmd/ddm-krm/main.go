// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/sam-fredrickson/ddm/internal/diag"
)

func main() {
	logger := diag.New(os.Stderr)
	if err := Run(os.Stdin, os.Stdout); err != nil {
		logger.MergeFailed(err)
		os.Exit(1)
	}
}
