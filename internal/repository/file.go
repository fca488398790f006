// Package repository содержит реализации хранилища записей адресов.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mmeshcher/cantina-gateway/internal/model"
)

// FileStore хранит отображение RM -> запись адреса в одном JSON-файле.
// Файл разделяемый, записи не сериализуются: конкурентные Save могут
// затереть друг друга. Это известное ограничение хранилища.
type FileStore struct {
	path string
}

// NewFileStore создаёт файловое хранилище по указанному пути.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load читает всё отображение из файла. Отсутствующий или повреждённый
// файл — ошибка ввода-вывода, которая передаётся вызывающему как есть.
func (s *FileStore) Load(_ context.Context) (map[string]*model.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var records map[string]*model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode store file: %w", err)
	}

	return records, nil
}

// Save записывает всё отображение в файл, затирая предыдущее содержимое.
func (s *FileStore) Save(_ context.Context, records map[string]*model.Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}

	return nil
}

// Close закрывает хранилище. Для файлового хранилища ресурсов нет.
func (s *FileStore) Close() error {
	return nil
}
