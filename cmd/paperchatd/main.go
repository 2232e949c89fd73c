package main

import (
	"fmt"
	"os"

	"github.com/paperchat/paperchat/internal/cli"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "paperchatd",
		Short: "Paperchat daemon",
		Long:  "Paperchat daemon for running the document Q&A and quiz API server",
	}

	rootCmd.AddCommand(cli.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
