package env

import (
	"fmt"
	logging "github.com/ipfs/go-log/v2"
	"os"
	"strconv"
	"time"
)

type Key = string

const (
	MarketAPIBaseURL      Key = "MARKET_API_BASE_URL"
	MarketSellerID        Key = "MARKET_SELLER_ID"
	MarketPollInterval    Key = "MARKET_POLL_INTERVAL"
	MarketRequestTimeout  Key = "MARKET_REQUEST_TIMEOUT"
	CookieRefreshInterval Key = "COOKIE_REFRESH_INTERVAL"
	TokenRefreshInterval  Key = "TOKEN_REFRESH_INTERVAL"
	DedupReleaseDelay     Key = "DEDUP_RELEASE_DELAY"
	CookieFetchCommand    Key = "COOKIE_FETCH_COMMAND"
	TransferSourceTag     Key = "TRANSFER_SOURCE_TAG"
	JournalMongoURI       Key = "JOURNAL_MONGO_URI"
	JournalMongoDatabase  Key = "JOURNAL_MONGO_DATABASE"
)

func GetString(key Key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value
}

func GetInt(key Key, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		logging.Logger("env").Debugf("failed to parse %s as int", key)
		return defaultValue
	}

	return intValue
}

func GetRequiredString(key Key) string {
	value := os.Getenv(key)
	if value == "" {
		logging.Logger("env").Panicf("%s not set", key)
	}

	return value
}

func GetRequiredDuration(key Key) time.Duration {
	value := GetRequiredString(key)
	duration, err := time.ParseDuration(value)
	if err != nil {
		logging.Logger("env").Panicf("failed to parse %s as duration", key)
	}

	return duration
}

func GetDuration(key Key, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return GetRequiredDuration(key)
}

func MustSet(key Key, value string) {
	err := os.Setenv(key, value)
	if err != nil {
		logging.Logger("env").Panicf("failed to set %s to %s", key, value)
	}
}

func MustSetAny(key Key, value interface{}) {
	str := fmt.Sprintf("%v", value)
	err := os.Setenv(key, str)
	if err != nil {
		logging.Logger("env").Panicf("failed to set %s to %s", key, value)
	}
}
