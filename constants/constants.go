package constants

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func GetLogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level != "" {
		return level
	}
	return "warn"
}

func GetServeAddr() string {
	addr := os.Getenv("STAFFDEX_ADDR")
	if addr != "" {
		return addr
	}
	return ":8080"
}

func GetCorsOrigins() []string {
	origins := os.Getenv("CORS_ORIGINS")
	if origins == "" {
		return []string{"*"}
	}
	var res []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			res = append(res, o)
		}
	}
	return res
}

func GetAwsRegion() string {
	region := os.Getenv("AWS_REGION")
	if region != "" {
		return region
	}
	return "us-east-1"
}

// empty means the default AWS endpoint
func GetS3Endpoint() string {
	return os.Getenv("S3_ENDPOINT")
}

func GetLiveDebounce() time.Duration {
	ms, err := strconv.Atoi(os.Getenv("LIVE_DEBOUNCE_MS"))
	if err != nil || ms <= 0 {
		return 50 * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}

// 120 BPM, the SMF default when a file carries no tempo event
const DefaultMicrosPerQuarter = 500000

// live input has no tempo map, so lookups report this
const LiveTempoBPM = 120

// shortest note hint for live input, which has no file resolution to inspect
const LiveMinTickLen = 60

const DefaultTimeSigNumerator = 4
const DefaultTimeSigDenominator = 4

// largest numerator/denominator the engraving front end can draw
const MaxTimeSigPart = 99

const MaxKeyAccidentals = 7

// empty disables the stream catalog
func GetCatalogTable() string {
	return os.Getenv("STAFFDEX_TABLE")
}

func GetDynamoEndpoint() string {
	return os.Getenv("DYNAMODB_ENDPOINT")
}
