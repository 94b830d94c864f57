package ws

// Frame types sent to clients.
const (
	FrameUpdate       = "update"
	FrameMemberJoined = "member.joined"
	FrameMemberLeft   = "member.left"

	ErrorEvent          = "error"
	AuthenticationError = "error.auth"
	JoinFailed          = "error.join"
)

// Command types accepted from clients.
const (
	CommandJoin  = "join"
	CommandLeave = "leave"
)
