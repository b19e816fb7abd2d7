// Package upload определяет коллаборатор загрузки файлов.
//
// Инструменты возвращают абсолютные пути файлов; рантайм через Uploader
// превращает их в опаковые handle, которые уходят агенту вместе с ответом.
//
// Политика all-or-nothing: ошибка загрузки ЛЮБОГО файла проваливает
// весь батч — частично загруженных ответов не бывает.
package upload

import "context"

// FileHandle — опаковый handle загруженного файла.
//
// Key — путь объекта в хранилище, URL — ссылка для скачивания
// (может быть пустой если хранилище не выдаёт presigned URL).
type FileHandle struct {
	Name string
	Key  string
	URL  string
	Size int64
}

// Uploader — контракт коллаборатора загрузки.
//
// Upload принимает упорядоченный список абсолютных путей и возвращает
// handle в том же порядке. Любая индивидуальная ошибка проваливает
// весь вызов.
type Uploader interface {
	Upload(ctx context.Context, paths []string) ([]FileHandle, error)
}
