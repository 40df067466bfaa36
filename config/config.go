// Copyright (c) 2024 The MODOS Project and its Contributors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

// The config package stores configuration data for the MODOS digital object
// service and its tools. The configuration is read from a YAML file whose
// sections are mirrored by the global variables below.
package config

import (
	"fmt"
	"log"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// a type with service configuration parameters
type serviceConfig struct {
	// Descriptive name reported by the service root endpoint.
	Name string `json:"name" yaml:"name"`
	// Port on which the service listens.
	Port int `json:"port" yaml:"port"`
	// Maximum number of allowed incoming connections.
	MaxConnections int `json:"maxConnections" yaml:"maxConnections"`
	// Directory in which the service keeps its operation journal.
	DataDirectory string `json:"dataDirectory" yaml:"dataDirectory"`
	// Number of seconds catalog listings are cached before being refreshed.
	CacheTtl int `json:"cacheTtl" yaml:"cacheTtl"`
	// Flag indicating whether debug logging is enabled.
	Debug bool `json:"debug" yaml:"debug"`
}

// a type with parameters for the object store backing the served archives
type storeConfig struct {
	// Name of the registered catalog source ("s3" unless a test source has
	// been registered in its place).
	Provider string `json:"provider" yaml:"provider"`
	// Bucket under which the served archives live.
	Bucket string `json:"bucket" yaml:"bucket"`
	// Object store URL advertised to clients. Deployments whose store sits
	// behind an internal network address set this to the address clients
	// reach; when empty, the S3 endpoint itself is advertised.
	PublicUrl string `json:"publicUrl" yaml:"publicUrl"`
	// S3 connection parameters.
	S3 S3Config `json:"s3" yaml:"s3"`
}

// a type with S3 connection parameters (exported so backends can accept it)
type S3Config struct {
	// Base URL of the S3-compatible endpoint (e.g. a MinIO deployment).
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	// Region passed to the S3 client ("us-east-1" if not given).
	Region string `json:"region" yaml:"region"`
	// Access key ID for authenticated access (optional).
	AccessKeyId string `json:"accessKeyId" yaml:"accessKeyId"`
	// Secret access key for authenticated access (optional).
	SecretAccessKey string `json:"secretAccessKey" yaml:"secretAccessKey"`
	// Flag forcing path-style bucket addressing (required by MinIO).
	PathStyle bool `json:"pathStyle" yaml:"pathStyle"`
	// Flag requesting unsigned (anonymous) access.
	Anonymous bool `json:"anonymous" yaml:"anonymous"`
}

// a type with parameters for the htsget service advertised to clients
type htsgetConfig struct {
	// Base URL of the htsget endpoint serving the store's genomic files.
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	// Number of seconds before an htsget block fetch times out.
	Timeout int `json:"timeout" yaml:"timeout"`
}

// a type with parameters for the fuzon terminology matching service
type fuzonConfig struct {
	// Base URL of the fuzon endpoint used for code matching.
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// global config variables
var Service serviceConfig
var Store storeConfig
var Htsget htsgetConfig
var Fuzon fuzonConfig

// This struct performs the unmarshalling from the YAML config file and then
// copies its fields to the globals above.
type configFile struct {
	Service serviceConfig `yaml:"service"`
	Store   storeConfig   `yaml:"store"`
	Htsget  htsgetConfig  `yaml:"htsget"`
	Fuzon   fuzonConfig   `yaml:"fuzon"`
}

// This helper locates and reads a configuration file, returning an error
// indicating success or failure. All environment variables of the form
// ${ENV_VAR} are expanded.
func readConfig(bytes []byte) error {
	// Before we do anything else, expand any provided environment variables.
	bytes = []byte(os.ExpandEnv(string(bytes)))

	var conf configFile
	conf.Service.Name = "modos"
	conf.Service.Port = 8080
	conf.Service.MaxConnections = 100
	conf.Service.CacheTtl = 30
	conf.Store.Provider = "s3"
	conf.Store.S3.Region = "us-east-1"
	conf.Htsget.Timeout = 60
	err := yaml.Unmarshal(bytes, &conf)
	if err != nil {
		log.Printf("Couldn't parse configuration data: %s\n", err)
		return err
	}

	// copy the config data into place
	Service = conf.Service
	Store = conf.Store
	Htsget = conf.Htsget
	Fuzon = conf.Fuzon

	return err
}

// This helper validates the given service parameters, returning an
// error indicating success or failure.
func validateServiceParameters(params serviceConfig) error {
	if params.Port < 0 || params.Port > 65535 {
		return fmt.Errorf("Invalid port: %d (must be 0-65535)", params.Port)
	}
	if params.MaxConnections <= 0 {
		return fmt.Errorf("Invalid maxConnections: %d (must be positive)",
			params.MaxConnections)
	}
	if params.CacheTtl <= 0 {
		return fmt.Errorf("Invalid cacheTtl: %d (must be positive)",
			params.CacheTtl)
	}
	return nil
}

// This helper validates the given object store parameters, returning an
// error indicating success or failure.
func validateStoreParameters(params storeConfig) error {
	if params.Provider == "" {
		return fmt.Errorf("No catalog provider was given!")
	}
	if params.Provider == "s3" {
		if params.Bucket == "" {
			return fmt.Errorf("No bucket was given for the S3 store!")
		}
		if params.S3.Endpoint == "" {
			return fmt.Errorf("No endpoint was given for the S3 store!")
		}
	}
	if params.S3.Endpoint != "" {
		if err := validateEndpoint("store.s3", params.S3.Endpoint); err != nil {
			return err
		}
	}
	if params.PublicUrl != "" {
		if err := validateEndpoint("store.publicUrl", params.PublicUrl); err != nil {
			return err
		}
	}
	return nil
}

// This helper checks that the named endpoint parameter holds an absolute
// http(s) URL, returning an error indicating success or failure.
func validateEndpoint(name, endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("Invalid %s endpoint: %s", name, endpoint)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("Invalid %s endpoint: %s (must be http or https)",
			name, endpoint)
	}
	return nil
}

// This helper validates the given configfile, returning an error that indicates
// success or failure.
func validateConfig() error {
	err := validateServiceParameters(Service)
	if err != nil {
		return err
	}
	err = validateStoreParameters(Store)
	if err != nil {
		return err
	}
	if Htsget.Endpoint != "" {
		if err := validateEndpoint("htsget", Htsget.Endpoint); err != nil {
			return err
		}
		if Htsget.Timeout <= 0 {
			return fmt.Errorf("Invalid htsget timeout: %d (must be positive)",
				Htsget.Timeout)
		}
	}
	if Fuzon.Endpoint != "" {
		if err := validateEndpoint("fuzon", Fuzon.Endpoint); err != nil {
			return err
		}
	}
	return nil
}

// Initializes the digital object service configuration using the given YAML
// byte data.
func Init(yamlData []byte) error {

	// Read the configuration from our YAML file.
	err := readConfig(yamlData)
	if err != nil {
		return err
	}

	// Validate the configuration.
	err = validateConfig()
	return err
}
