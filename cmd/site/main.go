// Command site runs one fragsql storage node: a local fragment store
// behind the site RPC server (spec §4.7).
package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/fragsql/fragsql/config"
	"github.com/fragsql/fragsql/localstore"
	"github.com/fragsql/fragsql/siterpc"
)

func main() {
	configPath := flag.String("config", "config.yaml", "cluster config file")
	flag.Parse()

	log := logrus.NewEntry(logrus.New())

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("site: failed to load config")
	}
	log = log.WithField("node", cfg.Name)

	shutdown := make(chan struct{})
	store := &nodeStore{Site: localstore.NewSite(), nodeName: cfg.Name, shutdown: shutdown}

	srv := siterpc.NewServer(store, log.WithField("component", "siterpc"))

	addr := fmt.Sprintf(":%d", cfg.Self().Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.WithError(err).Fatal("site: failed to listen on RPC port")
	}
	defer ln.Close()

	go func() {
		if err := srv.Serve(ln); err != nil {
			log.WithError(err).Warn("site: RPC listener stopped")
		}
	}()

	log.WithField("addr", addr).Info("site: accepting RPC connections")
	<-shutdown
	log.Info("site: close matched local name, shutting down")
	os.Exit(0)
}

// nodeStore wraps localstore.Site to detect the one control command that
// terminates this process: a "close" naming this node's own name (spec
// §4.6). localstore.Site itself tracks only whether a close was ever
// received, with no notion of which node the command named; that
// name-match belongs at the process boundary, since a site has no other
// reason to know its own configured name.
type nodeStore struct {
	*localstore.Site
	nodeName string
	shutdown chan struct{}
	done     bool
}

func (s *nodeStore) Control(command, kind string) error {
	if err := s.Site.Control(command, kind); err != nil {
		return err
	}
	if command == "close" && kind == s.nodeName && !s.done {
		s.done = true
		close(s.shutdown)
	}
	return nil
}
