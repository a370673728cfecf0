package constants

// for api auth
type ContextKey string

const (
	AuthorizationHeaderKey  ContextKey = "authorization"
	AuthorizationTypeBearer ContextKey = "bearer"
	AuthorizationPayloadKey ContextKey = "authorization_payload"
)

type ENV string

const (
	Debug ENV = "debug"
	Dev   ENV = "development"
	Stag  ENV = "staging"
	Prod  ENV = "production"
)

type RequestID string

const (
	RequestIDKey    RequestID = "request_id"
	RequestIDHeader           = "X-Request-Id"
)

type DbDriver string

const (
	DbDriverMongo    DbDriver = "mongo"
	DbDriverPostgres DbDriver = "postgres"
)

const (
	// 2% 手續費
	OrderSurchargeRate = "1.02"
	// multipart 上限
	MaxUploadSize int64 = 64 << 20
)
