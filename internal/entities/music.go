package entities

import (
	"time"
)

// EntityKind names a table whose rows can be targeted by engagement operations.
type EntityKind string

const (
	KindUser    EntityKind = "user"
	KindSong    EntityKind = "song"
	KindAlbum   EntityKind = "album"
	KindComment EntityKind = "comment"
)

// CommentKind tags the position of a comment in its thread.
// Threads are exactly two levels deep: Song -> top-level comment -> reply.
type CommentKind string

const (
	CommentKindTopLevel CommentKind = "top_level"
	CommentKindReply    CommentKind = "reply"
)

// Lang is the interface language a user picked.
type Lang string

const (
	LangEN Lang = "EN"
	LangRU Lang = "RU"
)

func (l Lang) Valid() bool {
	return l == LangEN || l == LangRU
}

// Theme is the colour scheme a user picked.
type Theme string

const (
	ThemeLight Theme = "LIGHT"
	ThemeDark  Theme = "DARK"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Lang         Lang      `gorm:"size:2;not null;default:EN" json:"lang"`
	Theme        Theme     `gorm:"size:8;not null;default:LIGHT" json:"theme"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Song struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Artist      string    `gorm:"size:256;not null" json:"artist"`
	Name        string    `gorm:"size:256;not null" json:"name"`
	ImageURL    string    `gorm:"size:2048" json:"image_url"`
	AudioURL    string    `gorm:"size:2048" json:"audio_url"`
	CreatorID   uint      `gorm:"index;not null" json:"creator_id"`
	Creator     User      `gorm:"foreignKey:CreatorID" json:"creator"`
	AlbumID     *uint     `gorm:"index" json:"album_id,omitempty"`
	NumLikes    int64     `gorm:"not null;default:0;index:idx_songs_trending,priority:2,sort:desc" json:"num_likes"`
	NumListens  int64     `gorm:"not null;default:0;index:idx_songs_trending,priority:1,sort:desc" json:"num_listens"`
	NumComments int64     `gorm:"not null;default:0" json:"num_comments"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Album struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:256;not null" json:"name"`
	ImageURL  string    `gorm:"size:2048" json:"image_url"`
	CreatorID uint      `gorm:"index;not null" json:"creator_id"`
	Creator   User      `gorm:"foreignKey:CreatorID" json:"creator"`
	NumSongs  int64     `gorm:"not null;default:0" json:"num_songs"`
	Songs     []Song    `gorm:"foreignKey:AlbumID" json:"songs,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Comment is either a top-level comment on a song (SongID set) or a reply
// to a top-level comment (ParentID set). Exactly one of the two is non-nil.
type Comment struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	Text           string      `gorm:"type:text;not null" json:"text"`
	Kind           CommentKind `gorm:"size:16;not null;index" json:"kind"`
	CreatorID      uint        `gorm:"index;not null" json:"creator_id"`
	Creator        User        `gorm:"foreignKey:CreatorID" json:"creator"`
	SongID         *uint       `gorm:"index" json:"song_id,omitempty"`
	ParentID       *uint       `gorm:"index" json:"parent_id,omitempty"`
	NumLikes       int64       `gorm:"not null;default:0" json:"num_likes"`
	NumSubComments int64       `gorm:"not null;default:0" json:"num_sub_comments"`
	SubComments    []Comment   `gorm:"foreignKey:ParentID" json:"sub_comments,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// IsReply reports whether the comment hangs off another comment.
func (c *Comment) IsReply() bool {
	return c.Kind == CommentKindReply
}

// SongLike is one edge of the user <-> song liking relation.
type SongLike struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	SongID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"song_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentLike is one edge of the user <-> comment liking relation.
type CommentLike struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CommentID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (Song) TableName() string {
	return "songs"
}

func (Album) TableName() string {
	return "albums"
}

func (Comment) TableName() string {
	return "comments"
}

func (SongLike) TableName() string {
	return "song_likes"
}

func (CommentLike) TableName() string {
	return "comment_likes"
}
