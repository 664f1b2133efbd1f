// tunehubd is an in-memory emulator of the Tunefab hub, for local
// development and end-to-end tests of the tune CLI.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tunefab/tunefab/cmd/tunehubd/fixtures"
	"github.com/tunefab/tunefab/cmd/tunehubd/handlers"
	"github.com/tunefab/tunefab/cmd/tunehubd/hub"
	"github.com/tunefab/tunefab/pkg/utils/echoutil"
	"github.com/tunefab/tunefab/pkg/utils/filewatch"
)

func main() {

	port := flag.String("port", "7480", "port to listen on")
	fixturesPath := flag.String("fixtures", "", "path to fixtures yaml. empty for built-in defaults")
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	pcert := flag.String("cert", "", "certification file for TLS")
	pkey := flag.String("certkey", "", "key of certification file for TLS")
	flag.Parse()

	e := echo.New()
	e.Pre(middleware.AddTrailingSlash())

	// set log
	echoutil.SetLevel(e, *loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)

	fx, err := fixtures.Load(*fixturesPath)
	if err != nil {
		log.Fatalf("can not read fixtures: %s", err)
	}

	if *fixturesPath != "" {
		ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), *fixturesPath)
		if err != nil {
			log.Fatalf("can not watch fixtures: %s", err)
		}
		defer cancel()
		context.AfterFunc(ctx, func() {
			log.Println("fixtures file is updated. quit to restart server.")
			graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := e.Shutdown(graceful); err != nil {
				log.Printf("error on shutdown by fixtures update: %s", err)
			}
		})
	}

	h := hub.New(fx)

	// handlers
	{
		e.PUT("/buckets/:bucket/objects/*", handlers.PutObjectHandler(h))
		e.GET("/buckets/:bucket/objects/*", handlers.GetObjectHandler(h))
	}

	{
		jobId := "jobId"
		e.POST("/jobs/", handlers.SubmitJobHandler(h))
		e.GET("/jobs/", handlers.FindJobsHandler(h))
		e.GET("/jobs/:jobId/", handlers.GetJobHandler(h, jobId))
		e.GET("/jobs/:jobId/candidates/", handlers.GetCandidatesHandler(h, jobId))
		e.PUT("/jobs/:jobId/stop/", handlers.StopJobHandler(h, jobId))
		e.DELETE("/jobs/:jobId/", handlers.DeleteJobHandler(h, jobId))
	}

	{
		name := "name"
		e.POST("/models/", handlers.CreateModelHandler(h))
		e.DELETE("/models/:name/", handlers.DeleteModelHandler(h, name))

		e.POST("/endpoint-configs/", handlers.CreateEndpointConfigHandler(h))
		e.DELETE("/endpoint-configs/:name/", handlers.DeleteEndpointConfigHandler(h, name))

		e.POST("/endpoints/", handlers.CreateEndpointHandler(h))
		e.GET("/endpoints/:name/", handlers.GetEndpointHandler(h, name))
		e.DELETE("/endpoints/:name/", handlers.DeleteEndpointHandler(h, name))
		e.POST("/endpoints/:name/invocations/", handlers.InvokeHandler(h, name))
	}

	log.Println("registred routes:")
	for _, r := range e.Routes() {
		log.Println(r.Method, r.Path)
	}

	cert, key := *pcert, *pkey
	if cert != "" && key != "" {
		e.Logger.Fatal(e.StartTLS(":"+*port, cert, key))
	} else {
		e.Logger.Fatal(e.Start(":" + *port))
	}
}
