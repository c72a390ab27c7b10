package datasetsvc

import "github.com/sir_venger/dataset_lite/internal/models"

// Access — решение шлюза доступа к файлам записи.
type Access int

const (
	// AccessInvalid — тип записи не предполагает файла, запрос некорректен.
	AccessInvalid Access = iota
	// AccessPublic — файл отдаётся без аутентификации.
	AccessPublic
	// AccessAuth — решение за auth gate.
	AccessAuth
)

// Decide вычисляет решение для записи: сначала проверка типа, затем
// глобальное разрешение публичного доступа (развёртывание целиком,
// без по-записных проверок), затем publicFlag самой записи, иначе —
// аутентификация.
func Decide(ds models.DataSet, allowPublicBinaryAccess bool) Access {
	if !ds.Type.HasFile() {
		return AccessInvalid
	}
	if allowPublicBinaryAccess {
		return AccessPublic
	}
	if fp, ok := ds.FilePayload(); ok && fp.PublicFlag {
		return AccessPublic
	}
	return AccessAuth
}
