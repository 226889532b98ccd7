// cmd/api/main.go
package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"go.uber.org/zap"
)

func main() {
	logger := zap.Must(zap.NewProduction())
	defer logger.Sync()

	routes := map[string]string{
		"/api/v1/directory":   getEnv("DIRECTORY_SERVICE_URL", "http://localhost:8081"),
		"/api/v1/workforce":   getEnv("WORKFORCE_SERVICE_URL", "http://localhost:8082"),
		"/api/v1/inventory":   getEnv("INVENTORY_SERVICE_URL", "http://localhost:8083"),
		"/api/v1/tickets":     getEnv("TICKETS_SERVICE_URL", "http://localhost:8084"),
		"/api/v1/procurement": getEnv("PROCUREMENT_SERVICE_URL", "http://localhost:8085"),
		"/api/v1/activity":    getEnv("ACTIVITY_SERVICE_URL", "http://localhost:8086"),
	}

	for prefix, target := range routes {
		serviceURL, err := url.Parse(target)
		if err != nil {
			logger.Fatal("invalid service URL", zap.String("prefix", prefix), zap.Error(err))
		}
		proxy := httputil.NewSingleHostReverseProxy(serviceURL)
		http.Handle(prefix+"/", http.StripPrefix(prefix, proxy))
	}

	port := getEnv("PORT", "8080")
	logger.Info("API gateway listening", zap.String("port", port))
	logger.Fatal("server exited", zap.Error(http.ListenAndServe(":"+port, nil)))
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
