package constants

const (
	//分頁
	DefaultPagingSize int = 10
	DefaultPaging     int = 1
	MaxPagingSize     int = 100
)

// for api auth
type ContextKey string

const (
	AuthorizationHeaderKey   ContextKey = "authorization"
	AuthorizationTypeBearer  ContextKey = "bearer"
	AuthorizationPayloadKey  ContextKey = "authorization_payload"
	AuthorizationIdentityKey ContextKey = "authorization_identity"
	TokenQueryKey                       = "token"
)

type TokenDurationHour int

const (
	AccessTokenDuration  TokenDurationHour = 24
	RefreshTokenDuration TokenDurationHour = 72
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
	RequestIDKey RequestID = "request_id"
)

// cache key prefix
const (
	OrderCachePrefix      = "order"
	UserOrdersCachePrefix = "userOrders"
)

// realtime
const (
	RealtimeChannel        = "orderUpdates"
	RealtimeBroadcastLocal = "local"
	RealtimeBroadcastRedis = "redis"
)

type Permission string

const (
	PermOrdersCreate       Permission = "orders:create"
	PermOrdersRead         Permission = "orders:read"
	PermOrdersUpdateStatus Permission = "orders:update_status"
	PermProductsCreate     Permission = "products:create"
)
