package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bcardhq/bcard-api/app/repositories"
	"github.com/bcardhq/bcard-api/internal/kernel"
	"github.com/bcardhq/bcard-api/internal/server"
	"github.com/bcardhq/bcard-api/pkg/storage"
)

// bcard serve — start the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// bcard route:list — print all registered routes.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Assemble the kernel with throwaway dependencies; only the
		// route table matters here.
		disk, err := storage.Open(storage.Options{Driver: "local"})
		if err != nil {
			return err
		}
		r := kernel.New(kernel.Options{
			JWTSecret: "route-list",
			AppKey:    "route-list",
			Users:     repositories.NewMemoryUserRepository(),
			Cards:     repositories.NewMemoryCardRepository(),
			Disk:      disk,
		})

		infos := r.Routes()
		if len(infos) == 0 {
			fmt.Println("No named routes registered.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
