// Package vocab 提供外部 token 与内部矩阵索引之间的双向映射。
// 交互矩阵、因子矩阵都以内部索引寻址，对外接口统一使用 token。
package vocab

// Vocab 是 token <-> index 的双向映射。
// 构建后只读，可安全并发读取。
type Vocab struct {
	tokens  []string
	indices map[string]int
}

// New 根据 token 列表构建 Vocab，索引即 token 在列表中的位置。
// 重复 token 保留首次出现的索引。
func New(tokens []string) *Vocab {
	v := &Vocab{
		tokens:  make([]string, 0, len(tokens)),
		indices: make(map[string]int, len(tokens)),
	}
	for _, tok := range tokens {
		if _, ok := v.indices[tok]; ok {
			continue
		}
		v.indices[tok] = len(v.tokens)
		v.tokens = append(v.tokens, tok)
	}
	return v
}

// Len 返回词表大小。
func (v *Vocab) Len() int { return len(v.tokens) }

// Index 返回 token 的内部索引；未知 token 返回 (0, false)。
// 注意：索引 0 是合法索引，必须通过 ok 判断是否命中。
func (v *Vocab) Index(token string) (int, bool) {
	idx, ok := v.indices[token]
	return idx, ok
}

// Token 返回索引对应的 token；越界返回 ("", false)。
func (v *Vocab) Token(index int) (string, bool) {
	if index < 0 || index >= len(v.tokens) {
		return "", false
	}
	return v.tokens[index], true
}

// Tokens 返回全部 token（按索引顺序）。返回的 slice 不应被修改。
func (v *Vocab) Tokens() []string { return v.tokens }
