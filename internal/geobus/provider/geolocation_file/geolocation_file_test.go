// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geolocation_file

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"

	"github.com/wneessen/waybar-whereto/internal/geobus"
	"github.com/wneessen/waybar-whereto/internal/logger"
)

const (
	testFile = "../../../../testdata/geolocation"
	testLat  = 37.5663
	testLon  = 126.9779
)

func TestNewGeolocationFileProvider(t *testing.T) {
	t.Run("new geolocation file provider succeeds", func(t *testing.T) {
		provider, err := NewGeolocationFileProvider(testFile, logger.Discard())
		if err != nil {
			t.Fatalf("failed to create provider: %s", err)
		}
		if provider.Name() != name {
			t.Errorf("expected provider name to be %s, got %s", name, provider.Name())
		}
	})
	t.Run("missing path fails", func(t *testing.T) {
		if _, err := NewGeolocationFileProvider("", logger.Discard()); err == nil {
			t.Error("expected provider creation to fail")
		}
	})
	t.Run("missing logger fails", func(t *testing.T) {
		if _, err := NewGeolocationFileProvider(testFile, nil); err == nil {
			t.Error("expected provider creation to fail")
		}
	})
}

func TestGeolocationFileProvider_readFile(t *testing.T) {
	t.Run("read file succeeds", func(t *testing.T) {
		provider, _ := NewGeolocationFileProvider(testFile, logger.Discard())
		coord, err := provider.readFile()
		if err != nil {
			t.Fatalf("failed to read file: %s", err)
		}
		if coord.Lat != testLat {
			t.Errorf("expected latitude to be %f, got %f", testLat, coord.Lat)
		}
		if coord.Lon != testLon {
			t.Errorf("expected longitude to be %f, got %f", testLon, coord.Lon)
		}
	})
	t.Run("read of non-existent file fails", func(t *testing.T) {
		provider, _ := NewGeolocationFileProvider("non-existent.txt", logger.Discard())
		if _, err := provider.readFile(); err == nil {
			t.Error("expected error, but didn't get one")
		}
	})
	t.Run("files without valid coordinates fail", func(t *testing.T) {
		for _, file := range []string{"_nocoord", "_brokenlat", "_brokenlon"} {
			t.Run(file, func(t *testing.T) {
				provider, _ := NewGeolocationFileProvider(testFile+file, logger.Discard())
				_, err := provider.readFile()
				if !errors.Is(err, ErrNoCoordinates) {
					t.Errorf("expected error to be %s, got %v", ErrNoCoordinates, err)
				}
			})
		}
	})
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		ok   bool
	}{
		{"37.5663,126.9779", true},
		{"  37.5663 , 126.9779  ", true},
		{"# 37.5663,126.9779", false},
		{"", false},
		{"37.5663", false},
		{"137.5663,126.9779", false},
	}
	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			if _, ok := parseLine(tc.line); ok != tc.ok {
				t.Errorf("expected parse result for %q to be %t", tc.line, tc.ok)
			}
		})
	}
}

func TestGeolocationFileProvider_LookupStream(t *testing.T) {
	t.Run("lookup stream emits the file coordinate", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()

			provider, _ := NewGeolocationFileProvider(testFile, logger.Discard())
			result := <-provider.LookupStream(ctx, "test")
			cancel()
			synctest.Wait()

			if result.Key != "test" {
				t.Errorf("expected key to be %s, got %s", "test", result.Key)
			}
			if result.Lat != testLat || result.Lon != testLon {
				t.Errorf("expected coordinate %f,%f, got %f,%f", testLat, testLon, result.Lat, result.Lon)
			}
			if result.AccuracyMeters != Accuracy {
				t.Errorf("expected accuracy to be %d, got %f", Accuracy, result.AccuracyMeters)
			}
			if result.Source != name {
				t.Errorf("expected source to be %s, got %s", name, result.Source)
			}
		})
	})
	t.Run("lookup stream keeps polling a broken file", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())
			provider, _ := NewGeolocationFileProvider(testFile+"_nocoord", logger.Discard())
			out := provider.LookupStream(ctx, "test")
			synctest.Wait()
			select {
			case r := <-out:
				t.Errorf("did not expect a result, got %+v", r)
			default:
			}
			cancel()
			for range out {
			}
		})
	})
}

var _ geobus.Provider = (*GeolocationFileProvider)(nil)
