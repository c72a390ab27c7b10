package models

import "errors"

var (
	// ErrNotFound — запись с таким id отсутствует в хранилище.
	ErrNotFound = errors.New("data set not found")
	// ErrInvalidRequest — тип записи не подходит для endpoint'а
	// либо запрос сформирован некорректно.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUploadRejected — загрузка отклонена: нераспознанный mime
	// изображения или невыводимое расширение бинарного файла.
	ErrUploadRejected = errors.New("upload rejected")
	// ErrContentType — файл изображения существует, но mime определить
	// не удалось; внутренняя ошибка, не ошибка клиента.
	ErrContentType = errors.New("content type undetermined")
)

// uploadRejectedError несёт клиентское сообщение отказа как есть,
// без префикса сентинеля: текст уходит в тело ответа дословно.
type uploadRejectedError struct {
	msg string
}

func (e uploadRejectedError) Error() string { return e.msg }

func (e uploadRejectedError) Is(target error) bool { return target == ErrUploadRejected }

// UploadRejected создаёт отказ загрузки с заданным сообщением.
// errors.Is(err, ErrUploadRejected) для него истинно.
func UploadRejected(msg string) error {
	return uploadRejectedError{msg: msg}
}
