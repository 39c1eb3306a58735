package lesson

import "github.com/KerelosNasser/driving-school-sub004/pkg/txmanager"

// Переиспользуем интерфейс executor из txmanager для работы с БД
// Репозиторий прозрачно подхватывает активную транзакцию из контекста
type DBExecutor = txmanager.DBExecutor
