// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package ichnaea

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mdlayher/wifi"

	"github.com/wneessen/waybar-whereto/internal/geobus"
	"github.com/wneessen/waybar-whereto/internal/http"
	"github.com/wneessen/waybar-whereto/internal/logger"
)

const (
	apiEndpoint   = "https://api.beacondb.net/v1/geolocate"
	lookupTimeout = time.Second * 5
	wifiScanTime  = time.Minute * 2
	name          = "ichnaea"
)

// GeolocationICHNAEAProvider locates the device through an Ichnaea compatible geolocation API
// (beaconDB) using the surrounding WiFi access points. Without WiFi support it falls back to the
// API's IP based lookup.
type GeolocationICHNAEAProvider struct {
	http    *http.Client
	scanner accessPointScanner
	logger  *logger.Logger
	poller  geobus.Poller

	apLock sync.RWMutex
	aps    []WirelessNetwork
}

type APIResult struct {
	Location struct {
		Latitude  float64 `json:"lat"`
		Longitude float64 `json:"lng"`
	} `json:"location"`
	Accuracy float64 `json:"accuracy"`
}

type WirelessNetwork struct {
	LastSeen       int64  `json:"age"`
	MACAddress     string `json:"macAddress"`
	SignalStrength int32  `json:"signalStrength"`
}

type accessPointScanner interface {
	AccessPoints() ([]WirelessNetwork, error)
}

func NewGeolocationICHNAEAProvider(client *http.Client, log *logger.Logger) (*GeolocationICHNAEAProvider, error) {
	if client == nil {
		return nil, errors.New("http client is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}

	provider := &GeolocationICHNAEAProvider{http: client, logger: log}
	wlan, err := wifi.New()
	if err != nil {
		log.Warn("no WiFi support, ichnaea lookups will be IP based", logger.Err(err))
	} else {
		provider.scanner = &wlanScanner{client: wlan}
	}
	provider.poller = geobus.Poller{
		Source: name,
		Period: time.Minute * 5,
		TTL:    time.Hour,
		Logger: log,
		Locate: provider.locate,
	}
	return provider, nil
}

func (p *GeolocationICHNAEAProvider) Name() string {
	return name
}

// LookupStream starts the access point monitor and polls the geolocation API.
func (p *GeolocationICHNAEAProvider) LookupStream(ctx context.Context, key string) <-chan geobus.Result {
	if p.scanner != nil {
		p.scanAccessPoints()
		go p.monitorAccessPoints(ctx)
	}
	return p.poller.Stream(ctx, key)
}

func (p *GeolocationICHNAEAProvider) monitorAccessPoints(ctx context.Context) {
	ticker := time.NewTicker(wifiScanTime)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.scanAccessPoints()
		}
	}
}

func (p *GeolocationICHNAEAProvider) scanAccessPoints() {
	list, err := p.scanner.AccessPoints()
	if err != nil {
		p.logger.Debug("failed to scan WiFi access points", logger.Err(err))
		return
	}
	p.apLock.Lock()
	p.aps = list
	p.apLock.Unlock()
}

func (p *GeolocationICHNAEAProvider) locate(ctx context.Context) (geobus.Coordinate, error) {
	p.apLock.RLock()
	wifiList := p.aps
	p.apLock.RUnlock()

	type request struct {
		ConsiderIP   bool              `json:"considerIp"`
		Accesspoints []WirelessNetwork `json:"wifiAccessPoints,omitempty"`
	}
	body := bytes.NewBuffer(nil)
	if err := json.NewEncoder(body).Encode(request{ConsiderIP: true, Accesspoints: wifiList}); err != nil {
		return geobus.Coordinate{}, fmt.Errorf("failed to encode wifi list to JSON: %w", err)
	}

	result := new(APIResult)
	if _, err := p.http.PostWithTimeout(ctx, apiEndpoint, result, body,
		map[string]string{"Content-Type": "application/json"}, lookupTimeout); err != nil {
		return geobus.Coordinate{}, fmt.Errorf("failed to get geolocation data from API: %w", err)
	}

	coord := geobus.Coordinate{
		Lat:   result.Location.Latitude,
		Lon:   result.Location.Longitude,
		Acc:   result.Accuracy,
		Found: result.Accuracy > 0,
	}
	return coord, nil
}

// wlanScanner lists the access points visible to the station interfaces of the system.
type wlanScanner struct {
	client *wifi.Client
}

func (s *wlanScanner) AccessPoints() ([]WirelessNetwork, error) {
	ifaces, err := s.client.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}

	var list []WirelessNetwork
	for _, iface := range ifaces {
		if iface.Type != wifi.InterfaceTypeStation {
			continue
		}
		aps, err := s.client.AccessPoints(iface)
		if err != nil {
			continue
		}
		for _, ap := range aps {
			// Networks ending in _nomap opted out of geolocation services.
			if ap.SSID == "" || ap.SSID[0] == '\x00' || strings.HasSuffix(ap.SSID, "_nomap") {
				continue
			}
			list = append(list, WirelessNetwork{
				SignalStrength: ap.Signal / 100,
				MACAddress:     ap.BSSID.String(),
				LastSeen:       ap.LastSeen.Milliseconds(),
			})
		}
	}
	return list, nil
}
