package registry

// Waves — статическое распределение шагов по волнам.
//
// Волна — это множество ID шагов, которые волновой движок выполняет
// параллельно. Волна 0 зарезервирована за KERNEL-шагами и выполняется
// отдельно; падение любого шага волны 0 прекращает весь запуск.
//
// Инварианты (проверяет engine.ValidateWaves):
//   - каждый шаг реестра принадлежит ровно одной волне
//   - каждый ID в волнах существует в реестре
//   - для каждой зависимости D шага S: wave(D) < wave(S) строго
type Waves [][]string

// WaveOf возвращает индекс волны для шага, -1 если шаг не распределён.
func (w Waves) WaveOf(stepID string) int {
	for i, wave := range w {
		for _, id := range wave {
			if id == stepID {
				return i
			}
		}
	}
	return -1
}

// Total возвращает суммарное количество назначений
// (с учётом возможных дубликатов в невалидном распределении).
func (w Waves) Total() int {
	n := 0
	for _, wave := range w {
		n += len(wave)
	}
	return n
}
