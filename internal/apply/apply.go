// Package apply 提供“单表或命名表映射”的统一应用策略。
// 表变换函数只需针对单表实现，批量场景通过本包逐键应用并保留键结构。
package apply

// ToEach 对映射中的每个值应用 fn，返回键结构不变的新映射
// 各条目相互独立、顺序无关；nil 映射返回空映射。
func ToEach[K comparable, In, Out any](in map[K]In, fn func(In) Out) map[K]Out {
	out := make(map[K]Out, len(in))
	for key, v := range in {
		out[key] = fn(v)
	}
	return out
}

// ToEachErr 与 ToEach 相同，但 fn 可返回错误
// 任一条目失败立即中止并返回该错误。
func ToEachErr[K comparable, In, Out any](in map[K]In, fn func(In) (Out, error)) (map[K]Out, error) {
	out := make(map[K]Out, len(in))
	for key, v := range in {
		r, err := fn(v)
		if err != nil {
			return nil, err
		}
		out[key] = r
	}
	return out, nil
}
