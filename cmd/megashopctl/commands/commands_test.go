package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"megashop/cmd/megashopctl/output"
	"megashop/internal/domain"
	"megashop/internal/middleware"
	"megashop/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakeAPI serves just enough of the API for the shopper commands
func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req transport.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password != "secret1" {
			middleware.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		middleware.RespondWithJSON(w, http.StatusOK, transport.AuthResponse{
			User:  transport.UserProfile{ID: uuid.NewString(), Email: req.Email, FullName: "Asha Perera"},
			Token: "cli-token",
		})
	})
	r.Get("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer cli-token" {
			middleware.RespondWithError(w, http.StatusUnauthorized, "access token required")
			return
		}
		middleware.RespondWithJSON(w, http.StatusOK, transport.UserProfile{Email: "asha@megashop.test", FullName: "Asha Perera"})
	})
	r.Get("/api/products", func(w http.ResponseWriter, r *http.Request) {
		middleware.RespondWithJSON(w, http.StatusOK, []*domain.Product{
			{ID: uuid.New(), Name: "Wireless Headphones", Price: decimal.RequireFromString("1999"), Category: "Electronics"},
			{ID: uuid.New(), Name: "Smart Watch", Price: decimal.RequireFromString("2999"), Category: "Electronics"},
			{ID: uuid.New(), Name: "Wired Headphones", Price: decimal.RequireFromString("499"), Category: "Electronics"},
		})
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

// resetFlags puts every flag back to its default between runs
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	output.Writer = &buf
	t.Cleanup(func() { output.Writer = os.Stdout })

	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestLoginSavesSessionForLaterCommands(t *testing.T) {
	api := newFakeAPI(t)
	tokenPath := filepath.Join(t.TempDir(), "token")
	common := []string{"--api", api.URL + "/api", "--token-file", tokenPath}

	_, err := run(t, append([]string{"me"}, common...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")

	_, err = run(t, append([]string{"login", "--email", "asha@megashop.test", "--password", "wrong"}, common...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")

	out, err := run(t, append([]string{"login", "--email", "asha@megashop.test", "--password", "secret1"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as asha@megashop.test")

	saved, err := os.ReadFile(tokenPath)
	require.NoError(t, err)
	assert.Equal(t, "cli-token\n", string(saved))

	out, err = run(t, append([]string{"me", "--json"}, common...)...)
	require.NoError(t, err)
	var profile transport.UserProfile
	require.NoError(t, json.Unmarshal([]byte(out), &profile))
	assert.Equal(t, "asha@megashop.test", profile.Email)

	_, err = run(t, append([]string{"logout"}, common...)...)
	require.NoError(t, err)
	_, err = os.Stat(tokenPath)
	assert.True(t, os.IsNotExist(err))
}

func TestProductsFiltersLocally(t *testing.T) {
	api := newFakeAPI(t)
	tokenPath := filepath.Join(t.TempDir(), "token")

	out, err := run(t, "products", "--api", api.URL+"/api", "--token-file", tokenPath,
		"--search", "headphones", "--sort", "price_low", "--json")
	require.NoError(t, err)

	var products []*domain.Product
	require.NoError(t, json.Unmarshal([]byte(out), &products))
	require.Len(t, products, 2)
	assert.Equal(t, "Wired Headphones", products[0].Name)
	assert.Equal(t, "Wireless Headphones", products[1].Name)

	_, err = run(t, "products", "--api", api.URL+"/api", "--token-file", tokenPath, "--sort", "newest")
	assert.Error(t, err)

	_, err = run(t, "products", "--api", api.URL+"/api", "--token-file", tokenPath, "--min", "cheap")
	assert.Error(t, err)
}

func TestEnvFileProvidesBaseURL(t *testing.T) {
	api := newFakeAPI(t)

	// Restored by t.Setenv once the test ends
	t.Setenv("API_BASE_URL", "")
	os.Unsetenv("API_BASE_URL")

	envPath := filepath.Join(t.TempDir(), "shop.env")
	require.NoError(t, os.WriteFile(envPath, []byte("API_BASE_URL="+api.URL+"/api\n"), 0o600))

	out, err := run(t, "products", "--env-file", envPath, "--token-file", filepath.Join(t.TempDir(), "token"), "--json")
	require.NoError(t, err)

	var products []*domain.Product
	require.NoError(t, json.Unmarshal([]byte(out), &products))
	assert.Len(t, products, 3)
}

func TestCartRequiresLogin(t *testing.T) {
	_, err := run(t, "cart", "--api", "http://127.0.0.1:1/api", "--token-file", filepath.Join(t.TempDir(), "token"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")

	_, err = run(t, "cart", "add", "not-a-uuid", "--token-file", filepath.Join(t.TempDir(), "token"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid product id")
}
