package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	Internal        Category = "Internal"
	RabbitMQ        Category = "RabbitMQ"
	MongoDB         Category = "MongoDB"
	WebSocket       Category = "WebSocket"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"

	// Pipeline
	Publish   SubCategory = "Publish"
	Consume   SubCategory = "Consume"
	Broadcast SubCategory = "Broadcast"

	// Connections
	Connect    SubCategory = "Connect"
	Disconnect SubCategory = "Disconnect"
	RoomJoin   SubCategory = "RoomJoin"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	HostIp       ExtraKey = "HostIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	BodySize     ExtraKey = "BodySize"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	Topic        ExtraKey = "Topic"
	RoomID       ExtraKey = "RoomID"
	EntityID     ExtraKey = "EntityID"
	ConnectionID ExtraKey = "ConnectionID"
	ErrorMessage ExtraKey = "ErrorMessage"
)
