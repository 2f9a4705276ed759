package models

// RewardStatus — состояние ежедневной награды пользователя
type RewardStatus struct {
	CanClaim     bool `json:"can_claim"`
	RewardAmount int  `json:"reward_amount"`
}
