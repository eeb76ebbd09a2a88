package db

import (
	"fmt"

	"github.com/yeisme/filevault/pkg/internal/model"
)

// Migrate 执行全部模型的自动迁移.
func (c *Client) Migrate() error {
	if err := c.AutoMigrate(
		&model.File{},
		&model.UploadChunk{},
		&model.ScheduledTask{},
		&model.TaskExecution{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return nil
}
