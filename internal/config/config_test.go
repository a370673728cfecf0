package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "SERVER_PORT=9090\nDB_DRIVER=postgres\nKAFKA_BROKERS=k1:9092, k2:9092\nREDIS_DB=2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cf, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "9090", cf.ServerPort)
	require.Equal(t, "postgres", cf.DbDriver)
	require.Equal(t, 2, cf.RedisDb)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cf.Brokers())
	require.Equal(t, "order-created", cf.OrderEventTopic)
}

func TestLoad_EnvOverridesAndMissingFile(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_1")
	t.Setenv("PAYMENT_CURRENCY", "USD")

	cf, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "rzp_test_1", cf.RazorpayKeyID)
	require.Equal(t, "USD", cf.PaymentCurrency)
	require.Equal(t, "storefront", cf.ServiceName)
}

func TestLoadSellerConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sellers.yaml")
	content := `sellers:
  - user_id: user_seller_1
    name: Royce Store
  - user_id: user_seller_2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	sc, err := LoadSellerConfig(path)
	require.NoError(t, err)
	require.Len(t, sc.Sellers, 2)
	require.True(t, sc.IsSeller("user_seller_1"))
	require.False(t, sc.IsSeller("user_buyer"))

	var nilConfig *SellerConfig
	require.False(t, nilConfig.IsSeller("user_seller_1"))

	_, err = LoadSellerConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
