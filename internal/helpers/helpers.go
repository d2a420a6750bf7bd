package helpers

import "github.com/cyphera/cyphera-agentpay/internal/constants"

// IsValidStage checks if the provided stage string is one of the defined valid stages.
func IsValidStage(stage string) bool {
	switch stage {
	case constants.ProdEnvironment, constants.DevEnvironment, constants.LocalStage, constants.TestStage:
		return true
	default:
		return false
	}
}
