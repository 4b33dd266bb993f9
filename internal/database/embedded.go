package database

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/xelth-com/loadboard/internal/config"
)

const (
	embeddedDataPath = "./db_data"
	embeddedPort     = 5433
	embeddedPassword = "postgres"
)

// usesEmbedded reports whether cfg points at the bundled server: localhost without a password
func usesEmbedded(cfg config.DatabaseConfig) bool {
	return cfg.Host == "localhost" && cfg.Password == ""
}

// startEmbedded boots the bundled PostgreSQL and returns cfg rewritten to reach it
func startEmbedded(cfg config.DatabaseConfig) (*embeddedpostgres.EmbeddedPostgres, config.DatabaseConfig, error) {
	log.Println("📦 Mode: [Embedded PostgreSQL] - starting bundled database...")

	reapOrphan(filepath.Join(embeddedDataPath, "postmaster.pid"))

	if err := waitForPort(embeddedPort, 3*time.Second); err != nil {
		return nil, cfg, err
	}

	pg := embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
		DataPath(embeddedDataPath).
		Port(uint32(embeddedPort)).
		Database(cfg.Database).
		Username(cfg.Username).
		Password(embeddedPassword))

	if err := pg.Start(); err != nil {
		return nil, cfg, fmt.Errorf("failed to start embedded database: %w", err)
	}

	cfg.Port = strconv.Itoa(embeddedPort)
	cfg.Password = embeddedPassword
	log.Printf("✅ Embedded PostgreSQL listening on port %d", embeddedPort)
	return pg, cfg, nil
}

// reapOrphan stops a postgres left running by a crashed previous run and removes its pid file
func reapOrphan(pidFile string) {
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return
	}

	firstLine := strings.SplitN(string(data), "\n", 2)[0]
	pid, err := strconv.Atoi(strings.TrimSpace(firstLine))
	if err != nil {
		log.Printf("⚠️  Unreadable postmaster.pid: %v", err)
		return
	}
	defer os.Remove(pidFile)

	process, err := os.FindProcess(pid)
	if err != nil || process.Signal(syscall.Signal(0)) != nil {
		log.Printf("🧹 Removing stale postmaster.pid (PID %d not running)", pid)
		return
	}

	log.Printf("⚠️  Orphaned PostgreSQL (PID %d) found, stopping it...", pid)
	_ = process.Signal(syscall.SIGTERM)
	for i := 0; i < 10; i++ {
		time.Sleep(500 * time.Millisecond)
		if process.Signal(syscall.Signal(0)) != nil {
			log.Printf("✅ Orphaned PostgreSQL stopped")
			return
		}
	}

	log.Printf("⚠️  PID %d ignored SIGTERM, killing", pid)
	_ = process.Kill()
	time.Sleep(500 * time.Millisecond)
}

// waitForPort polls until nothing accepts connections on port or the timeout elapses
func waitForPort(port int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for portInUse(port) {
		if time.Now().After(deadline) {
			return fmt.Errorf("port %d is still in use by another process", port)
		}
		log.Printf("⚠️  Port %d busy, waiting for release...", port)
		time.Sleep(500 * time.Millisecond)
	}
	return nil
}

func portInUse(port int) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
