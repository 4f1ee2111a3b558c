package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pdfsearch/internal/config"
)

var initPDFRoot string

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initPDFRoot, "pdf-root", "", "Folder holding the source PDF files")
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a pdfsearch store in the current directory",
	Long: `Create the .pdfsearch directory layout (index and cache folders)
and write the store configuration.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if config.IsStore(cwd) {
		exitWithError(ExitError, "store already initialized at %s", cwd)
	}

	if err := config.Init(cwd); err != nil {
		exitWithError(ExitError, "creating store layout: %v", err)
	}

	cfg := &config.Config{PDFRoot: initPDFRoot}
	if err := cfg.Save(cwd); err != nil {
		exitWithError(ExitError, "writing config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized pdfsearch store in %s\n", config.StorePath(cwd))
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: config.StorePath(cwd)})
	}
	return nil
}
