package types

// ClaimMessage 链下签发的结构化凭证声明
//
// 规范摘要（canonical digest）是对该结构紧凑 JSON 编码做 SHA-256，
// 字段顺序即结构体声明顺序，序列化结果必须逐字节稳定 —— 修改字段顺序
// 或标签都会破坏既有签名。
type ClaimMessage struct {
	From              string `json:"from"`
	To                string `json:"to"`
	TokenURI          string `json:"token_uri"`
	Fee               Coin   `json:"fee"`
	VerifyingContract string `json:"verifying_contract"`
	ChainID           string `json:"chain_id"`
	Bech32Prefix      string `json:"bech32_hrp"`
	Timestamp         string `json:"timestamp"`
}
