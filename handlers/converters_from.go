package handlers

import (
	"shardctl/domain"
	"shardctl/service"
)

// fromAddInstanceRequest validates the instance address.
// Returns service.BadParameterError on validation failure.
func fromAddInstanceRequest(req AddInstanceRequest) (string, error) {
	if req.Address == "" {
		return "", service.NewBadParameterError("address is required", nil)
	}
	if err := domain.ValidateAddress(req.Address); err != nil {
		return "", service.NewBadParameterError("address must be an ip:port literal", err)
	}
	return req.Address, nil
}
