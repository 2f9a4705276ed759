package service

import "time"

// SetRewardClock подменяет часы сервиса наград в тестах
func SetRewardClock(s RewardService, now func() time.Time) {
	s.(*rewardService).now = now
}
