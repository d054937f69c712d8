package merge

import "github.com/MKhiriev/go-task-keeper/models"

type conflictLog struct {
	details []models.ConflictDetail
}

func (c *conflictLog) add(id models.NodeID, field string, local, server any) {
	c.details = append(c.details, models.ConflictDetail{
		ItemID:      id,
		Field:       field,
		LocalValue:  local,
		ServerValue: server,
		Resolution:  models.ResolutionServerWins,
	})
}

// mergeContent merges every tracked attribute independently. Without a base
// any difference between the sides is a conflict.
func mergeContent(c *conflictLog, id models.NodeID, base, local, server models.NodeContent, hasBase bool) models.NodeContent {
	return models.NodeContent{
		Value:      mergeValue(c, id, models.FieldValue, base.Value, local.Value, server.Value, hasBase),
		Done:       mergeValue(c, id, models.FieldDone, base.Done, local.Done, server.Done, hasBase),
		Collapsed:  mergeValue(c, id, models.FieldCollapsed, base.Collapsed, local.Collapsed, server.Collapsed, hasBase),
		File:       mergeValue(c, id, models.FieldFile, base.File, local.File, server.File, hasBase),
		TimerStart: mergeValue(c, id, models.FieldTimerStart, base.TimerStart, local.TimerStart, server.TimerStart, hasBase),
		TimerTotal: mergeValue(c, id, models.FieldTimerTotal, base.TimerTotal, local.TimerTotal, server.TimerTotal, hasBase),
	}
}

func mergeValue[T comparable](c *conflictLog, id models.NodeID, field string, base, local, server T, hasBase bool) T {
	if local == server {
		return server
	}
	if hasBase {
		switch {
		case local == base:
			return server
		case server == base:
			return local
		}
	}

	c.add(id, field, local, server)
	return server
}
