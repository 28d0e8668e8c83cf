package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openmarine/picolink/pkg/bridge"
	"github.com/openmarine/picolink/pkg/client"
	"github.com/openmarine/picolink/pkg/redis"
	"github.com/openmarine/picolink/pkg/transport"
)

// Configuration flags
var (
	picoHost         = flag.String("host", "", "Pico address (skips UDP discovery)")
	tcpPort          = flag.Int("tcp-port", transport.DefaultTCPPort, "Pico control port")
	udpPort          = flag.Int("udp-port", transport.DefaultUDPPort, "Pico broadcast port")
	discoveryTimeout = flag.Duration("discovery-timeout", 0, "Give up discovery after this long (0 = wait forever)")
	requestTimeout   = flag.Duration("request-timeout", 5*time.Second, "TCP connect and request timeout")
	snapshotInterval = flag.Duration("snapshot-interval", time.Minute, "How often to push a CBOR snapshot (0 = never)")
	redisAddr        = flag.String("redis-addr", "localhost:6379", "Redis server address")
	redisPass        = flag.String("redis-pass", "", "Redis password")
	redisDB          = flag.Int("redis-db", 0, "Redis database number")
)

func main() {
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Printf("Starting Pico bridge")
	log.Printf("Redis address: %s", *redisAddr)

	redisClient, err := redis.New(*redisAddr, *redisPass, *redisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Printf("Connected to Redis")

	host := *picoHost
	if host == "" {
		log.Printf("Listening for Pico broadcasts on UDP port %d...", *udpPort)
		host, err = client.Discover(*udpPort, *discoveryTimeout)
		if err != nil {
			log.Fatalf("Discovery failed: %v", err)
		}
	}

	sess, err := client.Connect(host, *tcpPort, *requestTimeout)
	if err != nil {
		log.Fatalf("Failed to connect to Pico at %s: %v", host, err)
	}
	defer sess.Close()
	log.Printf("Connected to Pico at %s:%d", host, *tcpPort)

	svc := bridge.New(sess, redisClient)
	if err := svc.Enumerate(); err != nil {
		log.Fatalf("Enumeration failed: %v", err)
	}

	listener, err := transport.ListenUDP(*udpPort)
	if err != nil {
		log.Fatalf("Failed to listen for broadcasts: %v", err)
	}
	defer listener.Close()

	// Mirror broadcasts until shutdown.
	mirrorDone := make(chan error, 1)
	go func() {
		mirrorDone <- svc.MirrorBroadcasts(listener)
	}()

	if *snapshotInterval > 0 {
		go func() {
			ticker := time.NewTicker(*snapshotInterval)
			defer ticker.Stop()
			for range ticker.C {
				if err := svc.Snapshot(time.Now()); err != nil {
					log.Printf("Error pushing snapshot: %v", err)
				}
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received %v, shutting down...", sig)
	case err := <-mirrorDone:
		if err != nil {
			log.Printf("Broadcast mirror stopped: %v", err)
		}
	}
	svc.Stop()
	listener.Close()
}
