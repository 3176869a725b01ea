package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ImportJobKey returns the cache key holding an import job's state
func (r *CacheKeyStruct) ImportJobKey(jobID string) string {
	return fmt.Sprintf("import:job:%s", jobID)
}

// BankQuestionsKey returns the cache key for a bank's question list
func (r *CacheKeyStruct) BankQuestionsKey(bankID string) string {
	return fmt.Sprintf("bank:%s:questions", bankID)
}

var CacheKey = NewCacheKeyStruct()
