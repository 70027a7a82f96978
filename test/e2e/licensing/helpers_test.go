package licensing_test

import (
	"context"
	"crypto/rsa"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/daftar/pkg/cryptox"
	"github.com/aussiebroadwan/daftar/pkg/httpx"
	"github.com/aussiebroadwan/daftar/pkg/licensekey"
	"github.com/aussiebroadwan/daftar/pkg/licensesdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Shared setup for the license service end-to-end tests: one image build per
 * run, one signing key pair, and a container per test.
 */

const (
	testImageName = "daftar-licensing-test:latest"

	adminJWTSecret = "e2e-admin-secret-0123456789"
	adminEmail     = "ops@daftar.test"
	adminPhone     = "+6281200000000"
)

var (
	signingKey   *rsa.PrivateKey
	publicKeyPEM string
)

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(0)
	}

	privPEM, pubPEM, err := cryptox.GenerateRSAKeyPair(2048)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate signing key: %v\n", err)
		os.Exit(1)
	}
	if signingKey, err = licensekey.ParsePrivateKeyPEM(privPEM); err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse signing key: %v\n", err)
		os.Exit(1)
	}
	publicKeyPEM = string(pubPEM)

	fmt.Fprintf(os.Stdout, "Building License Service Docker image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up License Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/licensing/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // image might not exist
}

func baseEnv() map[string]string {
	return map[string]string{
		"LICENSE_DATABASE_FILE": "/data/licensing.db",
		"LICENSE_PUBLIC_KEY":    publicKeyPEM,
		"ADMIN_JWT_SECRET":      adminJWTSecret,
		"ADMIN_EMAIL":           adminEmail,
		"ADMIN_PHONE":           adminPhone,
		"ENV":                   "test",
		"LOG_LEVEL":             "info",
		"LOG_FORMAT":            "json",
	}
}

// setupLicenseContainer starts the service with relaxed rate limits and
// returns the base URL.
func setupLicenseContainer(t *testing.T) (string, func()) {
	t.Helper()
	env := baseEnv()
	env["RATELIMIT_LICENSE_REQUESTS"] = "1000"
	env["RATELIMIT_LICENSE_WINDOW_SEC"] = "60"
	env["RATELIMIT_LICENSE_BURST"] = "1000"
	return startContainer(t, env)
}

// setupLicenseContainerWithDefaultRateLimits keeps production limits for the
// rate limiting tests.
func setupLicenseContainerWithDefaultRateLimits(t *testing.T) (string, func()) {
	t.Helper()
	return startContainer(t, baseEnv())
}

func startContainer(t *testing.T, env map[string]string) (string, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/readyz").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}

// adminClient returns an admin SDK client authenticated with a fresh JWT.
func adminClient(t *testing.T, client *licensesdk.Client) *licensesdk.AdminClient {
	t.Helper()
	token, err := httpx.IssueAdminToken([]byte(adminJWTSecret), "e2e", httpx.RoleAdmin, time.Hour)
	require.NoError(t, err)
	return client.Admin(token)
}

// issueLicense signs a key and registers it through the admin API.
func issueLicense(t *testing.T, admin *licensesdk.AdminClient, ttl time.Duration) string {
	t.Helper()

	key, err := licensekey.Sign(signingKey, licensekey.Payload{
		Plan:      "pro",
		ExpiresAt: time.Now().Add(ttl).UTC().Truncate(time.Second),
	})
	require.NoError(t, err)

	lic, err := admin.RegisterLicense(t.Context(), key)
	require.NoError(t, err, "register should succeed")
	require.Equal(t, "ACTIVE", lic.Status)
	return key
}

// assertCode checks that err is an API error carrying code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, licensesdk.IsCode(err, code), "expected %s, got: %v", code, err)
}

// countActivity counts entries of kind in the recent audit log.
func countActivity(t *testing.T, admin *licensesdk.AdminClient, kind string) int {
	t.Helper()
	entries, err := admin.RecentActivity(t.Context(), 1000)
	require.NoError(t, err)

	n := 0
	for _, e := range entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
