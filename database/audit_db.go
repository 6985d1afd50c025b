package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import the SQLite3 driver

	"sentry-bot/audit"
)

// AuditDB 持久化所有审核事件 (verify / ban / suspect)。
// 审核记录必须落盘成功，与 modlog 频道通知是否可用无关。
type AuditDB struct {
	db *sql.DB
}

// NewAuditDB 打开（必要时创建）审核数据库。
// dbPath: 数据库文件路径
func NewAuditDB(dbPath string) (*AuditDB, error) {
	// 确保数据库目录存在
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建数据库目录失败: %w", err)
	}

	// 打开数据库连接
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	// Ping 验证连接可用
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	adb := &AuditDB{db: db}
	if err := adb.initTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("初始化数据表失败: %w", err)
	}
	return adb, nil
}

// Close 关闭数据库连接
func (adb *AuditDB) Close() {
	if adb.db != nil {
		adb.db.Close()
	}
}

// initTable 创建审核日志表（如果不存在）
func (adb *AuditDB) initTable() error {
	createSQL := `CREATE TABLE IF NOT EXISTS moderation_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		guild_id TEXT,
		target_id TEXT NOT NULL,
		target_tag TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		actor_tag TEXT NOT NULL,
		reasons TEXT,
		created_at INTEGER NOT NULL
	);`

	if _, err := adb.db.Exec(createSQL); err != nil {
		return fmt.Errorf("创建审核日志表失败: %w", err)
	}
	return nil
}

// Insert 写入一条审核事件
func (adb *AuditDB) Insert(event audit.Event) error {
	at := event.At
	if at.IsZero() {
		at = time.Now()
	}
	insertSQL := `INSERT INTO moderation_log
		(type, guild_id, target_id, target_tag, actor_id, actor_tag, reasons, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := adb.db.Exec(insertSQL,
		string(event.Type),
		event.GuildID,
		event.Target.ID,
		event.Target.Tag(),
		event.Actor.ID,
		event.Actor.Tag(),
		strings.Join(event.Reasons, "\n"),
		at.Unix(),
	)
	if err != nil {
		return fmt.Errorf("写入审核事件失败: %w", err)
	}
	return nil
}

// AuditRecord 是从数据库读回的一条审核记录
type AuditRecord struct {
	ID        int64
	Type      string
	GuildID   string
	TargetID  string
	TargetTag string
	ActorID   string
	ActorTag  string
	Reasons   []string
	CreatedAt time.Time
}

// RecentRecords 按时间倒序读取最近的审核记录
func (adb *AuditDB) RecentRecords(limit int) ([]AuditRecord, error) {
	querySQL := `SELECT id, type, guild_id, target_id, target_tag, actor_id, actor_tag, reasons, created_at
		FROM moderation_log ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := adb.db.Query(querySQL, limit)
	if err != nil {
		return nil, fmt.Errorf("查询审核记录失败: %w", err)
	}
	defer rows.Close()

	var records []AuditRecord
	for rows.Next() {
		var r AuditRecord
		var reasons string
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.Type, &r.GuildID, &r.TargetID, &r.TargetTag, &r.ActorID, &r.ActorTag, &reasons, &createdAt); err != nil {
			return nil, fmt.Errorf("读取审核记录失败: %w", err)
		}
		if reasons != "" {
			r.Reasons = strings.Split(reasons, "\n")
		}
		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}
	return records, rows.Err()
}
