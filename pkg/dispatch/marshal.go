// Маршалинг результата обработчика в ответ агенту.
package dispatch

import (
	"context"
	"os"
	"path/filepath"

	"github.com/deepshard/hyphae/pkg/tools"
)

// marshal строит Success из возвращаемого значения обработчика.
//
// Для каждого приложенного пути: проверка существования, затем загрузка
// всего батча через upload-коллаборатор. Любая индивидуальная ошибка
// проваливает ВЕСЬ вызов с KindUploadError — частично успешных ответов
// с файлами не бывает.
//
// ВАЖНО (решённая неоднозначность источника): мутации состояния,
// сделанные обработчиком ДО неудачной загрузки, сохраняются — откат
// не выполняется. All-or-nothing распространяется на payload ответа,
// не на состояние. Закреплено тестом в marshal_test.go.
func (e *Engine[S]) marshal(ctx context.Context, result tools.Result) Outcome {
	if len(result.Files) == 0 {
		return Outcome{Success: &Success{
			Text:  result.Text,
			Final: result.Final,
		}}
	}

	// 1. Разрешаем существование всех путей до обращения к хранилищу
	for _, p := range result.Files {
		if !filepath.IsAbs(p) {
			return failure(KindUploadError, "file path is not absolute: %q", p)
		}
		if _, err := os.Stat(p); err != nil {
			return failure(KindUploadError, "file not found: %q", p)
		}
	}

	if e.uploader == nil {
		return failure(KindUploadError, "no uploader configured, cannot attach %d file(s)", len(result.Files))
	}

	// 2. Загружаем батч целиком
	handles, err := e.uploader.Upload(ctx, result.Files)
	if err != nil {
		return failure(KindUploadError, "failed to upload files: %v", err)
	}

	return Outcome{Success: &Success{
		Text:  result.Text,
		Files: handles,
		Final: result.Final,
	}}
}
