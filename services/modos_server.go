// Copyright (c) 2024 The MODOS Project and its Contributors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// The services package runs the digital object catalog service: a small
// read-only HTTP API that lists the archives in a bucket, merges their
// metadata, and answers search queries against their names.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humamux"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/netutil"

	"github.com/modos-dev/modos/config"
)

// Version numbers
var majorVersion = 0
var minorVersion = 1
var patchVersion = 0

// Version string
var version = fmt.Sprintf("%d.%d.%d", majorVersion, minorVersion, patchVersion)

// This type implements the CatalogService interface, serving the archives
// enumerated by the configured catalog source.
type modosServer struct {
	// name of the service
	Name string
	// service version identifier
	Version string
	// time which the service was started
	StartTime time.Time
	// port on which the service currently runs
	Port int
	// router for REST endpoints
	Router *mux.Router
	// API wrapper
	API huma.API
	// HTTP server.
	Server *http.Server
	// cached archive listing backed by the catalog source
	Catalog *catalog
}

// advertisedObjectStore returns the object store URL served to clients.
func advertisedObjectStore() string {
	if config.Store.PublicUrl != "" {
		return config.Store.PublicUrl
	}
	return config.Store.S3.Endpoint
}

type ServiceInfoOutput struct {
	Body ServiceInfoResponse `doc:"information about the service itself"`
}

// handler method for root queries, which also advertise the deployment's
// auxiliary service endpoints
func (service *modosServer) getRoot(ctx context.Context,
	input *struct{}) (*ServiceInfoOutput, error) {

	slog.Info("Querying root endpoint...")
	observeRequest("/")
	return &ServiceInfoOutput{
		Body: ServiceInfoResponse{
			Name:          service.Name,
			Version:       service.Version,
			Uptime:        int(service.uptime()),
			Documentation: "/docs",
			S3:            advertisedObjectStore(),
			Htsget:        config.Htsget.Endpoint,
		},
	}, nil
}

type ArchiveListOutput struct {
	Body ArchiveListResponse `doc:"A list of the scoped object paths of all served archives"`
}

// handler method for listing all archives in the served bucket
func (service *modosServer) listArchives(ctx context.Context,
	input *struct{}) (*ArchiveListOutput, error) {

	slog.Info("Listing archives...")
	observeRequest("/list")
	archives, err := service.Catalog.Archives(ctx)
	if err != nil {
		return nil, err
	}
	return &ArchiveListOutput{
		Body: ArchiveListResponse{
			Archives: archives,
		},
	}, nil
}

type MetadataOutput struct {
	Body MetadataResponse `doc:"The merged metadata of all served archives"`
}

// handler method for gathering the metadata of all served archives
func (service *modosServer) gatherMetadata(ctx context.Context,
	input *struct{}) (*MetadataOutput, error) {

	slog.Info("Gathering archive metadata...")
	observeRequest("/meta")
	metadata, err := service.Catalog.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	return &MetadataOutput{
		Body: MetadataResponse{
			Metadata: metadata,
		},
	}, nil
}

type SearchOutput struct {
	Body SearchResponse `doc:"The archives whose names match the given query"`
}

// handler method for resolving archive names to object store paths
func (service *modosServer) searchArchives(ctx context.Context,
	input *struct {
		Query      string `query:"query" example:"ex1" doc:"An archive name to look for"`
		ExactMatch bool   `query:"exact_match" doc:"If true, only exact name matches are returned"`
	}) (*SearchOutput, error) {

	if input.Query == "" {
		return nil, huma.Error422UnprocessableEntity("No query was given.")
	}

	slog.Info(fmt.Sprintf("Searching archives matching %s...", input.Query))
	observeRequest("/get")
	paths, err := service.Catalog.Search(ctx, input.Query, input.ExactMatch)
	if err != nil {
		return nil, err
	}

	endpoint := advertisedObjectStore()
	matches := make([]ArchiveMatch, 0, len(paths))
	for _, archivePath := range paths {
		match := ArchiveMatch{
			Path:       archivePath,
			S3Endpoint: endpoint,
			Url:        archivePath,
		}
		if endpoint != "" {
			match.Url = endpoint + "/" + archivePath
		}
		matches = append(matches, match)
	}
	return &SearchOutput{
		Body: SearchResponse{
			Matches: matches,
		},
	}, nil
}

// returns the uptime for the service in seconds
func (service *modosServer) uptime() float64 {
	return time.Since(service.StartTime).Seconds()
}

// constructs a catalog service given our configuration
func NewModosServer() (CatalogService, error) {

	// validate our configuration
	if config.Store.Provider == "" {
		return nil, fmt.Errorf("No catalog provider was specified.")
	}
	source, err := NewSource(config.Store.Provider)
	if err != nil {
		return nil, err
	}

	service := new(modosServer)
	service.Name = config.Service.Name
	service.Version = version
	service.Port = -1
	service.Catalog = newCatalog(source,
		time.Duration(config.Service.CacheTtl)*time.Second)

	// set up routing
	service.Router = mux.NewRouter()
	service.API = humamux.New(service.Router, huma.DefaultConfig(service.Name, service.Version))
	huma.Get(service.API, "/", service.getRoot)
	huma.Get(service.API, "/list", service.listArchives)
	huma.Get(service.API, "/meta", service.gatherMetadata)
	huma.Get(service.API, "/get", service.searchArchives)
	service.Router.Handle("/metrics", promhttp.Handler())

	return service, nil
}

// starts the catalog service
func (service *modosServer) Start(port int) error {
	slog.Info(fmt.Sprintf("Starting %s service on port %d...", service.Name, port))
	slog.Info(fmt.Sprintf("(Accepting up to %d connections)", config.Service.MaxConnections))

	service.StartTime = time.Now()

	// create a listener that limits the number of incoming connections
	service.Port = port
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		return err
	}
	defer listener.Close()
	listener = netutil.LimitListener(listener, config.Service.MaxConnections)

	// start the server
	service.Server = &http.Server{
		Handler: service.Router}
	err = service.Server.Serve(listener)

	// we don't report the server closing as an error
	if err != http.ErrServerClosed {
		return err
	}
	return nil
}

// gracefully shuts down the service without interrupting active connections
func (service *modosServer) Shutdown(ctx context.Context) error {
	if service.Server != nil {
		return service.Server.Shutdown(ctx)
	}
	return nil
}

// closes down the service abruptly, freeing all resources
func (service *modosServer) Close() {
	if service.Server != nil {
		service.Server.Close()
	}
}
