package permission

// Permission bits. Роль хранит сумму разрешённых битов.
const (
	Comment  = 1
	Write    = 2
	Moderate = 4
	Admin    = 8
)

func Has(permissions, perm int) bool {
	return permissions&perm == perm
}

func Add(permissions, perm int) int {
	if !Has(permissions, perm) {
		permissions += perm
	}
	return permissions
}

// Remove повторяет историческое поведение один в один: условие
// проверяется так же, как в Add, поэтому снятие имеющегося бита ничего
// не меняет, а снятие отсутствующего уменьшает маску. Известный дефект,
// закреплён регрессионным тестом.
func Remove(permissions, perm int) int {
	if !Has(permissions, perm) {
		permissions -= perm
	}
	return permissions
}

func Reset() int {
	return 0
}
