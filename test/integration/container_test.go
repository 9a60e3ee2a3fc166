//go:build integration

package integration

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

const postgresImage = "postgres:16-alpine"

// startPostgresContainer runs postgres through the Docker CLI on a random
// loopback port and returns its connection string and a cleanup function.
func startPostgresContainer(ctx context.Context) (string, func(), error) {
	out, err := exec.CommandContext(ctx, "docker", "run", "-d", "--rm",
		"-p", "127.0.0.1::5432",
		"-e", "POSTGRES_USER=emergency",
		"-e", "POSTGRES_PASSWORD=emergency",
		"-e", "POSTGRES_DB=emergencyview",
		postgresImage,
	).CombinedOutput()
	if err != nil {
		return "", nil, fmt.Errorf("docker run: %w\noutput: %s", err, out)
	}
	id := strings.TrimSpace(string(out))
	cleanup := func() { _ = exec.Command("docker", "rm", "-f", id).Run() }

	hostPort, err := mappedPort(ctx, id)
	if err != nil {
		cleanup()
		return "", nil, err
	}

	connStr := fmt.Sprintf("postgres://emergency:emergency@%s/emergencyview?sslmode=disable", hostPort)
	if err := waitForPostgres(ctx, connStr, 30*time.Second); err != nil {
		cleanup()
		return "", nil, err
	}
	return connStr, cleanup, nil
}

// mappedPort asks docker where 5432/tcp of container id was published.
func mappedPort(ctx context.Context, id string) (string, error) {
	out, err := exec.CommandContext(ctx, "docker", "port", id, "5432/tcp").Output()
	if err != nil {
		return "", fmt.Errorf("docker port: %w", err)
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	if _, _, err := net.SplitHostPort(line); err != nil {
		return "", fmt.Errorf("unexpected docker port output %q: %w", line, err)
	}
	return line, nil
}

func waitForPostgres(ctx context.Context, connStr string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tick := time.NewTicker(500 * time.Millisecond)
	defer tick.Stop()
	for {
		conn, err := pgx.Connect(ctx, connStr)
		if err == nil {
			err = conn.Ping(ctx)
			conn.Close(context.Background())
			if err == nil {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres not ready after %v: %w", timeout, err)
		case <-tick.C:
		}
	}
}
