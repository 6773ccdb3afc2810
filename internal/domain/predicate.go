package domain

// Channel — идентификатор канала тулчейна (например, "1.13.0", "stable",
// "beta", "nightly"). Канал параметризует один job в матрице.
type Channel string

// PredicateKind — вид предиката применимости шага.
//
// Предикаты — явные тегированные варианты, а не произвольные булевы
// выражения. Это позволяет исчерпывающе перечислить их в тестах
// и валидировать ссылки на каналы при загрузке дескриптора.
type PredicateKind string

const (
	// PredicateAlways — шаг выполняется на любом канале.
	PredicateAlways PredicateKind = "always"

	// PredicateChannelEquals — шаг выполняется только на указанном канале.
	PredicateChannelEquals PredicateKind = "channel_equals"

	// PredicateChannelNotEquals — шаг выполняется на всех каналах, кроме указанного.
	PredicateChannelNotEquals PredicateKind = "channel_not_equals"

	// PredicateChannelIn — шаг выполняется на каналах из заданного множества.
	PredicateChannelIn PredicateKind = "channel_in"
)

// Predicate — условие применимости шага к каналу.
//
// Предикат чистый: зависит только от канала, не от результатов
// предыдущих шагов. Вычисляется один раз при раскрытии матрицы.
type Predicate struct {
	// Kind — вид предиката.
	Kind PredicateKind `json:"kind" yaml:"kind"`

	// Channel — канал для equals/not_equals.
	Channel Channel `json:"channel,omitempty" yaml:"channel,omitempty"`

	// Channels — множество каналов для in.
	Channels []Channel `json:"channels,omitempty" yaml:"channels,omitempty"`
}

// Always возвращает предикат "выполнять всегда".
func Always() Predicate {
	return Predicate{Kind: PredicateAlways}
}

// ChannelEquals возвращает предикат "только на канале ch".
func ChannelEquals(ch Channel) Predicate {
	return Predicate{Kind: PredicateChannelEquals, Channel: ch}
}

// ChannelNotEquals возвращает предикат "на всех каналах, кроме ch".
func ChannelNotEquals(ch Channel) Predicate {
	return Predicate{Kind: PredicateChannelNotEquals, Channel: ch}
}

// ChannelIn возвращает предикат "на каналах из множества".
func ChannelIn(channels ...Channel) Predicate {
	return Predicate{Kind: PredicateChannelIn, Channels: channels}
}

// Eval вычисляет предикат для канала.
// Неизвестный Kind даёт false: такой предикат отбрасывается
// валидацией дескриптора раньше, чем дело дойдёт до вычисления.
func (p Predicate) Eval(ch Channel) bool {
	switch p.Kind {
	case PredicateAlways, "":
		// Пустой Kind трактуется как always: дескриптор может
		// опустить предикат у безусловного шага.
		return true
	case PredicateChannelEquals:
		return ch == p.Channel
	case PredicateChannelNotEquals:
		return ch != p.Channel
	case PredicateChannelIn:
		for _, c := range p.Channels {
			if c == ch {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// References возвращает каналы, на которые ссылается предикат.
// Используется валидацией: ссылка на необъявленный канал — ошибка конфигурации.
func (p Predicate) References() []Channel {
	switch p.Kind {
	case PredicateChannelEquals, PredicateChannelNotEquals:
		return []Channel{p.Channel}
	case PredicateChannelIn:
		return p.Channels
	default:
		return nil
	}
}
