package handlers

import (
	"shardctl/domain"
	"shardctl/interfaces"
)

func toInstance(i domain.ShardInstance) Instance {
	return Instance{
		ShardIndex: i.ShardIndex,
		Address:    i.Address,
		Health:     i.Health.String(),
		Generation: i.Generation,
	}
}

// toEventResponse converts a membership event to API response.
func toEventResponse(ev domain.MembershipEvent) EventResponse {
	return EventResponse{
		Kind:       ev.Kind.String(),
		Version:    ev.Version,
		ShardCount: ev.ShardCount,
		Instance:   toInstance(ev.Instance),
	}
}

// toTableResponse converts the operator's current table to API response.
func toTableResponse(op interfaces.ShardOperator) TableResponse {
	spec, table := op.Spec(), op.Table()
	version, instances := table.Snapshot()
	out := make([]Instance, 0, len(instances))
	for _, i := range instances {
		out = append(out, toInstance(i))
	}
	return TableResponse{
		ServiceId:  spec.ServiceID,
		State:      op.State().String(),
		Version:    version,
		ShardCount: spec.ShardCount,
		Instances:  out,
	}
}

func toServiceInfo(op interfaces.ShardOperator) ServiceInfo {
	spec := op.Spec()
	return ServiceInfo{
		ServiceId:  spec.ServiceID,
		State:      op.State().String(),
		Version:    op.Table().Version,
		ShardCount: spec.ShardCount,
	}
}
