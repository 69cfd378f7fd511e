package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mchat/internal/app/user"
)

// UserRecord is a full user row, including credentials. Only this package
// and the auth handlers see it; everything else gets user.User.
type UserRecord struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	AvatarURL    string
	CreatedAt    time.Time
}

// Public converts the row to its client-facing shape.
func (u UserRecord) Public() user.User {
	return user.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
}

// ChatRecord is a full conversation record with its participant list.
type ChatRecord struct {
	ID        string
	Name      string
	IsGroup   bool
	AdminID   string
	Users     []user.User
	CreatedAt time.Time
}

// MessageRecord is a full message row.
type MessageRecord struct {
	ID        string
	ChatID    string
	SenderID  string
	Content   string
	CreatedAt time.Time
}

// Store is the whole-record query layer over the connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps the pool in a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateUser inserts a new user and returns the stored record.
func (s *Store) CreateUser(ctx context.Context, name, email, passwordHash string) (UserRecord, error) {
	var u UserRecord

	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, email, password_hash, avatar_url, created_at`,
		name, email, passwordHash,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.AvatarURL, &u.CreatedAt)

	return u, err
}

// GetUserByEmail loads a user by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (UserRecord, error) {
	var u UserRecord

	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, avatar_url, created_at
		 FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.AvatarURL, &u.CreatedAt)

	return u, err
}

// GetUserByID loads a user by primary key.
func (s *Store) GetUserByID(ctx context.Context, id string) (UserRecord, error) {
	var u UserRecord

	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, avatar_url, created_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.AvatarURL, &u.CreatedAt)

	return u, err
}

// SearchUsers finds users whose name or email matches the query,
// excluding the caller. Matching is case-insensitive substring.
func (s *Store) SearchUsers(ctx context.Context, query, excludeUserID string) ([]user.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, email, avatar_url
		 FROM users
		 WHERE (name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')
		   AND id <> $2
		 ORDER BY name
		 LIMIT 20`,
		query, excludeUserID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.AvatarURL); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// UpdateAvatar stores the avatar object URL on the user row.
func (s *Store) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET avatar_url = $2 WHERE id = $1`,
		userID, avatarURL,
	)
	return err
}

// GetDirectChat finds the existing 1:1 chat between two users, if any.
func (s *Store) GetDirectChat(ctx context.Context, userA, userB string) (ChatRecord, error) {
	var chatID string

	err := s.pool.QueryRow(ctx,
		`SELECT c.id
		 FROM chats c
		 JOIN chat_users a ON a.chat_id = c.id AND a.user_id = $1
		 JOIN chat_users b ON b.chat_id = c.id AND b.user_id = $2
		 WHERE c.is_group = FALSE`,
		userA, userB,
	).Scan(&chatID)
	if err != nil {
		return ChatRecord{}, err
	}

	return s.GetChatByID(ctx, chatID)
}

// CreateChat inserts a chat with the given participants inside one
// transaction and returns the whole record.
func (s *Store) CreateChat(ctx context.Context, name string, isGroup bool, adminID string, userIDs []string) (ChatRecord, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ChatRecord{}, err
	}
	defer tx.Rollback(ctx)

	var chatID string
	err = tx.QueryRow(ctx,
		`INSERT INTO chats (name, is_group, admin_id)
		 VALUES ($1, $2, NULLIF($3, '')::uuid)
		 RETURNING id`,
		name, isGroup, adminID,
	).Scan(&chatID)
	if err != nil {
		return ChatRecord{}, err
	}

	for _, userID := range userIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO chat_users (chat_id, user_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			chatID, userID,
		); err != nil {
			return ChatRecord{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return ChatRecord{}, err
	}

	return s.GetChatByID(ctx, chatID)
}

// GetChatByID loads a chat and its participant list.
func (s *Store) GetChatByID(ctx context.Context, chatID string) (ChatRecord, error) {
	var c ChatRecord
	var adminID *string

	err := s.pool.QueryRow(ctx,
		`SELECT id, name, is_group, admin_id, created_at
		 FROM chats WHERE id = $1`,
		chatID,
	).Scan(&c.ID, &c.Name, &c.IsGroup, &adminID, &c.CreatedAt)
	if err != nil {
		return ChatRecord{}, err
	}

	if adminID != nil {
		c.AdminID = *adminID
	}

	c.Users, err = s.chatParticipants(ctx, chatID)
	if err != nil {
		return ChatRecord{}, err
	}

	return c, nil
}

// chatParticipants loads the public user records joined to a chat.
func (s *Store) chatParticipants(ctx context.Context, chatID string) ([]user.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT u.id, u.name, u.email, u.avatar_url
		 FROM users u
		 JOIN chat_users cu ON cu.user_id = u.id
		 WHERE cu.chat_id = $1
		 ORDER BY u.name`,
		chatID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.AvatarURL); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// ListChatsForUser returns every chat the user participates in, most
// recently created first, each with its full participant list.
func (s *Store) ListChatsForUser(ctx context.Context, userID string) ([]ChatRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT c.id
		 FROM chats c
		 JOIN chat_users cu ON cu.chat_id = c.id
		 WHERE cu.user_id = $1
		 ORDER BY c.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	var chatIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		chatIDs = append(chatIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	chats := make([]ChatRecord, 0, len(chatIDs))
	for _, id := range chatIDs {
		chat, err := s.GetChatByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading chat %s: %w", id, err)
		}
		chats = append(chats, chat)
	}

	return chats, nil
}

// IsChatMember reports whether the user participates in the chat.
func (s *Store) IsChatMember(ctx context.Context, chatID, userID string) (bool, error) {
	var exists bool

	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM chat_users WHERE chat_id = $1 AND user_id = $2
		 )`,
		chatID, userID,
	).Scan(&exists)

	return exists, err
}

// RenameChat updates a chat's display name.
func (s *Store) RenameChat(ctx context.Context, chatID, name string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE chats SET name = $2 WHERE id = $1`,
		chatID, name,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// AddChatUser joins a user to a chat. Idempotent.
func (s *Store) AddChatUser(ctx context.Context, chatID, userID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO chat_users (chat_id, user_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		chatID, userID,
	)
	return err
}

// RemoveChatUser removes a user from a chat.
func (s *Store) RemoveChatUser(ctx context.Context, chatID, userID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM chat_users WHERE chat_id = $1 AND user_id = $2`,
		chatID, userID,
	)
	return err
}

// SaveMessage persists a message and returns the stored record.
func (s *Store) SaveMessage(ctx context.Context, id, chatID, senderID, content string) (MessageRecord, error) {
	var m MessageRecord

	err := s.pool.QueryRow(ctx,
		`INSERT INTO messages (id, chat_id, sender_id, content)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, chat_id, sender_id, content, created_at`,
		id, chatID, senderID, content,
	).Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.CreatedAt)

	return m, err
}

// ListMessages returns a chat's messages in chronological order.
func (s *Store) ListMessages(ctx context.Context, chatID string) ([]MessageRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, chat_id, sender_id, content, created_at
		 FROM messages
		 WHERE chat_id = $1
		 ORDER BY created_at`,
		chatID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []MessageRecord
	for rows.Next() {
		var m MessageRecord
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}
