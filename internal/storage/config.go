package storage

import "os"

// Backend selects which persistence backend the service runs with
type Backend string

const (
	BackendDynamo Backend = "dynamo"
	BackendMongo  Backend = "mongo"
	BackendNone   Backend = "none"
)

// DynamoMode represents the DynamoDB connection mode
type DynamoMode string

const (
	DynamoModeLocal DynamoMode = "local"
	DynamoModeAWS   DynamoMode = "aws"
)

// StoreConfig holds persistence configuration for every backend
type StoreConfig struct {
	Backend Backend

	// DynamoDB
	DynamoMode      DynamoMode
	DynamoEndpoint  string // for local mode
	DynamoRegion    string
	ActivitiesTable string
	RollupsTable    string

	// MongoDB
	MongoURI       string
	MongoDatabase  string
	ActivitiesColl string
	RollupsColl    string
}

// LoadStoreConfig loads persistence config from environment
func LoadStoreConfig() StoreConfig {
	backend := Backend(getEnv("STORE_BACKEND", "none"))
	if backend != BackendDynamo && backend != BackendMongo {
		backend = BackendNone
	}

	mode := DynamoMode(getEnv("DYNAMO_MODE", "local"))
	if mode != DynamoModeLocal && mode != DynamoModeAWS {
		mode = DynamoModeLocal
	}

	return StoreConfig{
		Backend:         backend,
		DynamoMode:      mode,
		DynamoEndpoint:  getEnv("DYNAMO_ENDPOINT", "http://localhost:8000"),
		DynamoRegion:    getEnv("DYNAMO_REGION", "ap-southeast-1"),
		ActivitiesTable: getEnv("DYNAMO_ACTIVITIES_TABLE", "salesdesk-activities"),
		RollupsTable:    getEnv("DYNAMO_ROLLUPS_TABLE", "salesdesk-daily-rollups"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "salesdesk"),
		ActivitiesColl:  getEnv("MONGO_ACTIVITIES_COLLECTION", "activities"),
		RollupsColl:     getEnv("MONGO_ROLLUPS_COLLECTION", "daily_rollups"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
