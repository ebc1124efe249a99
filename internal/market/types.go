package market

import "time"

// Role gates write capabilities. The mapping from role to permitted actions
// lives in the authz package.
type Role string

const (
	RoleUser    Role = "user"
	RoleCreator Role = "creator"
	RoleAdmin   Role = "admin"
	RoleOwner   Role = "owner"
)

// AssetStatus is the moderation state of an asset. Transitions are
// pending -> approved and pending -> rejected; both targets are terminal.
type AssetStatus string

const (
	StatusPending  AssetStatus = "pending"
	StatusApproved AssetStatus = "approved"
	StatusRejected AssetStatus = "rejected"
)

// MessageType classifies a direct message for presentation.
type MessageType string

const (
	MessageInfo         MessageType = "info"
	MessageWarning      MessageType = "warning"
	MessageNotification MessageType = "notification"
	MessageSystem       MessageType = "system"
	MessageChat         MessageType = "chat"
)

// TicketStatus is the lifecycle state of a support ticket.
type TicketStatus string

const (
	TicketOpen     TicketStatus = "open"
	TicketResolved TicketStatus = "resolved"
	TicketClosed   TicketStatus = "closed"
)

// Profile holds the user-editable presentation fields.
type Profile struct {
	DisplayName    string   `json:"display_name"`
	Bio            string   `json:"bio"`
	Avatar         string   `json:"avatar"`
	Banner         string   `json:"banner"`
	BannerColor    string   `json:"banner_color"`
	AccentColor    string   `json:"accent_color"`
	DiscordLink    string   `json:"discord_link"`
	TwitterLink    string   `json:"twitter_link"`
	YoutubeLink    string   `json:"youtube_link"`
	WebsiteLink    string   `json:"website_link"`
	Pronouns       string   `json:"pronouns"`
	Location       string   `json:"location"`
	CustomStatus   string   `json:"custom_status"`
	StatusEmoji    string   `json:"status_emoji"`
	AboutMe        string   `json:"about_me"`
	ShowcaseAssets []string `json:"showcase_assets"`
	Theme          string   `json:"theme"`
}

// User is a marketplace account. All relations are id based; there are no
// direct references between entities.
type User struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Password        string    `json:"-"`
	Role            Role      `json:"role"`
	Profile         Profile   `json:"profile"`
	Tags            []string  `json:"tags"`
	Following       []string  `json:"following"`
	Followers       []string  `json:"followers"`
	PurchasedAssets []string  `json:"purchased_assets"`
	Balance         int64     `json:"balance"`
	JoinDate        time.Time `json:"join_date"`
	LastSeen        time.Time `json:"last_seen"`
	IsOnline        bool      `json:"is_online"`
	BlacklistedBy   []string  `json:"blacklisted_by"`
	CustomerOf      []string  `json:"customer_of"`
}

// Rating is a single user's review of an asset. At most one entry exists per
// (asset, user) pair; a repeat submission replaces the prior entry in place.
type Rating struct {
	UserID  string `json:"user_id"`
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// Asset is a downloadable or purchasable catalog item. Prices are whole
// credits; no fractional amounts exist.
type Asset struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Category      string      `json:"category"`
	Tags          []string    `json:"tags"`
	CreatorID     string      `json:"creator_id"`
	Price         int64       `json:"price"`
	IsFree        bool        `json:"is_free"`
	DownloadCount int         `json:"download_count"`
	Rating        float64     `json:"rating"`
	RatingCount   int         `json:"rating_count"`
	Ratings       []Rating    `json:"ratings"`
	Status        AssetStatus `json:"status"`
	RejectReason  string      `json:"reject_reason,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	FileSize      string      `json:"file_size"`
	Thumbnail     string      `json:"thumbnail"`
	Images        []string    `json:"images"`
}

// Tag is an admin-defined label assignable to users.
type Tag struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	TextColor string `json:"text_color"`
	Icon      string `json:"icon,omitempty"`
	CreatedBy string `json:"created_by"`
}

// Message is a direct message. Created unread; transitions to read exactly
// once and is never deleted.
type Message struct {
	ID        string      `json:"id"`
	FromID    string      `json:"from_id"`
	ToID      string      `json:"to_id"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	Read      bool        `json:"read"`
	CreatedAt time.Time   `json:"created_at"`
}

// ChatMessage is an append-only channel broadcast entry.
type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Channel   string    `json:"channel"`
}

// TicketMessage is one entry in a support ticket thread.
type TicketMessage struct {
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SupportTicket is a conversation between a user and a target user. Messages
// may only be appended while the ticket is open.
type SupportTicket struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	TargetID  string          `json:"target_id"`
	Subject   string          `json:"subject"`
	Status    TicketStatus    `json:"status"`
	Messages  []TicketMessage `json:"messages"`
	CreatedAt time.Time       `json:"created_at"`
}

// SalesSummary aggregates a creator's catalog performance. Revenue counts the
// creator's 90% cut per paid download.
type SalesSummary struct {
	CreatorID      string `json:"creator_id"`
	AssetCount     int    `json:"asset_count"`
	TotalDownloads int    `json:"total_downloads"`
	Revenue        int64  `json:"revenue"`
}
