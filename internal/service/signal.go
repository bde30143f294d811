// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

type signalSource interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

type stdLibSignalSource struct{}

func (stdLibSignalSource) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

func (stdLibSignalSource) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}

// HandleSignals reacts to the user signals sent by the waybar module:
//
//	SIGUSR1: search for new recommendations
//	SIGUSR2: switch between food and cafe mode and search again
//	SIGHUP:  toggle between the regular and the alternative output
func (s *Service) HandleSignals(ctx context.Context, sigChan chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigChan:
			switch sig {
			case syscall.SIGUSR1:
				s.logger.Debug("reroll requested")
				go s.reroll(ctx)
			case syscall.SIGUSR2:
				mode := s.toggleMode()
				s.logger.Info("switched search mode", slog.String("mode", mode.String()))
				go s.reroll(ctx)
			case syscall.SIGHUP:
				s.displayAltLock.Lock()
				s.displayAltText = !s.displayAltText
				s.displayAltLock.Unlock()
				s.printOutput(ctx)
			}
		}
	}
}
