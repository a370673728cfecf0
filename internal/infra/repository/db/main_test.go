package db

import (
	"os"
	"testing"
)

const integrationEnv = "STOREFRONT_INTEGRATION"

// 需要本機 postgres, 未設定環境變數則略過
func skipIfNoIntegration(t *testing.T) {
	if os.Getenv(integrationEnv) == "" {
		t.Skipf("set %s to run postgres integration tests", integrationEnv)
	}
}
