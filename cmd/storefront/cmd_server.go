package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cupcakery/storefront/app/routes"
	"github.com/cupcakery/storefront/app/services"
	"github.com/cupcakery/storefront/config"
	"github.com/cupcakery/storefront/pkg/app"
	"github.com/cupcakery/storefront/pkg/logger"
	"github.com/cupcakery/storefront/pkg/queue"
	"github.com/cupcakery/storefront/pkg/router"
)

// storefront serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		reg, err := bootRuntime(ctx)
		if err != nil {
			return err
		}

		if n := config.Int("QUEUE_WORKERS", 2); n > 0 {
			wg := queue.StartWorkers(ctx, n)
			defer wg.Wait()
			logger.Info("queue: in-process workers started", "workers", n)
		}

		return newApplication(reg).Serve(ctx)
	},
}

// storefront route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Handlers are never invoked here; services only need to exist.
		reg := services.NewRegistry(nil, nil, nil)
		infos := app.New().Routes(func(r *router.Router) {
			routes.RegisterWeb(r, reg)
			routes.RegisterOps(r, reg)
		}).RouteTable()

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
