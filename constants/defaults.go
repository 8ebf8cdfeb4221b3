package constants

import "time"

const Title = "fshare - send a single file to another host"

const (
	DEFAULT_ADDRESS         = "0.0.0.0:8080"      // Server bind address
	DEFAULT_DIRECTORY       = "./"                // Where received files land
	READ_TIMEOUT            = 5 * time.Second     // Applied to every blocking read
	GOODBYE_ATTEMPTS        = 5                   // Client side goodbye budget
	SERVER_GOODBYE_ATTEMPTS = 10                  // Server side goodbye budget
	FILE_BUFFER_SIZE        = 64 * 1024           // Buffered file reads and writes
	MAX_FILENAME_PAYLOAD    = 4096                // Single read for the unframed filename
	WRITE_TEST_FILE         = "fshare_write_test" // Directory writability probe
	DEFAULT_DSCP            = 0x0A                // QoS for high throughput
	SERVICE_TYPE            = "_fshare._tcp"      // mDNS service announced by the server
	SERVICE_DOMAIN          = "local."            // mDNS domain
)
