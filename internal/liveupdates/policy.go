package liveupdates

import (
	"time"

	"github.com/shenikar/resqsphere/internal/models"
)

// ActionKind - тип изменения, которое симулятор применяет к инциденту за один тик
type ActionKind string

const (
	ActionNone           ActionKind = "none"
	ActionAppendUpdate   ActionKind = "append_update"
	ActionAdjustAffected ActionKind = "adjust_affected"
	ActionAdvance        ActionKind = "advance"
	ActionResolve        ActionKind = "resolve"
)

// band - полоса вероятностей [предыдущая граница, upper) с предусловием по статусу
type band struct {
	upper  float64
	action ActionKind
	allows func(models.IncidentStatus) bool
}

func isReported(s models.IncidentStatus) bool   { return s == models.StatusReported }
func isInProgress(s models.IncidentStatus) bool { return s == models.StatusInProgress }

// transitionTable просматривается сверху вниз одним значением r.
// Если предусловие выбранной полосы не выполнено, действие не применяется
// и к следующей полосе мы не переходим.
var transitionTable = []band{
	{upper: 0.30, action: ActionAppendUpdate, allows: models.IncidentStatus.IsActive},
	{upper: 0.50, action: ActionAdjustAffected, allows: models.IncidentStatus.IsActive},
	{upper: 0.70, action: ActionAdvance, allows: isReported},
	{upper: 0.85, action: ActionResolve, allows: isInProgress},
	{upper: 1.00, action: ActionNone},
}

// UpdateCatalogue - тексты, из которых выбираются записи хроники
var UpdateCatalogue = []string{
	"Emergency services arrived on scene",
	"Search and rescue operations in progress",
	"Evacuation proceeding smoothly",
	"Medical teams treating patients",
	"Fire contained. Extinguishing remaining hotspots",
	"Traffic control measures implemented",
	"Additional resources requested",
	"Situation stabilizing",
	"All clear signal given",
	"Road reopened to traffic",
}

// SelectAction возвращает действие для статуса и значения r из [0, 1).
// Чистая функция: одинаковые (status, r) всегда дают одинаковый результат.
func SelectAction(status models.IncidentStatus, r float64) ActionKind {
	for _, b := range transitionTable {
		if r < b.upper {
			if b.allows == nil || !b.allows(status) {
				return ActionNone
			}
			return b.action
		}
	}
	return ActionNone
}

// Change описывает примененное к инциденту изменение
type Change struct {
	Action         ActionKind
	Update         string
	AffectedPeople *int
	Status         models.IncidentStatus
}

// Event собирает точечное событие для рассылки
func (c *Change) Event(incident *models.Incident, at time.Time) IncidentUpdateEvent {
	return IncidentUpdateEvent{
		IncidentID:     incident.ID,
		Update:         c.Update,
		AffectedPeople: c.AffectedPeople,
		Status:         c.Status,
		Timestamp:      at,
	}
}

// Policy применяет выбранное действие к инциденту в памяти
type Policy struct {
	rnd       Rand
	catalogue []string
}

func NewPolicy(rnd Rand) *Policy {
	return &Policy{
		rnd:       rnd,
		catalogue: UpdateCatalogue,
	}
}

// Apply выбирает действие по r и применяет его. Возвращает nil, если инцидент не изменился.
func (p *Policy) Apply(incident *models.Incident, r float64, now time.Time) *Change {
	switch SelectAction(incident.Status, r) {
	case ActionAppendUpdate:
		text := p.catalogue[p.rnd.IntN(len(p.catalogue))]
		incident.AppendLiveUpdate(text, incident.Author(), now)
		return &Change{Action: ActionAppendUpdate, Update: text}

	case ActionAdjustAffected:
		delta := p.rnd.IntN(3) - 1
		confirmed := max(0, incident.AffectedPeople.Confirmed+delta)
		incident.AffectedPeople.Confirmed = confirmed
		return &Change{Action: ActionAdjustAffected, AffectedPeople: &confirmed}

	case ActionAdvance:
		incident.Status = models.StatusInProgress
		return &Change{Action: ActionAdvance, Status: models.StatusInProgress}

	case ActionResolve:
		incident.Resolve(now)
		return &Change{Action: ActionResolve, Status: models.StatusResolved}
	}
	return nil
}
