package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/sweeney/grow-controller/internal/status"
)

// piHelperEnv is where pi-helper writes the current network state.
const piHelperEnv = "/run/pi-helper.env"

// pi-helper env var names.
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

// networkReader returns a function reading network info from path. The
// file is re-read on every call since pi-helper rewrites it when the link
// changes; the process environment is used when it cannot be read.
func networkReader(path string) func() *status.NetworkInfo {
	return func() *status.NetworkInfo {
		env, _ := godotenv.Read(path)
		return readNetworkInfo(func(key string) string {
			if v, ok := env[key]; ok {
				return v
			}
			return os.Getenv(key)
		})
	}
}

func readNetworkInfo(get func(string) string) *status.NetworkInfo {
	s := get(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       get(envNetworkType),
		IP:         get(envNetworkIP),
		Status:     s,
		Gateway:    get(envNetworkGateway),
		WifiStatus: get(envNetworkWifiStatus),
		SSID:       get(envNetworkWifiSSID),
	}
}
