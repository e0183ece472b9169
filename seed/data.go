package seed

// Cities seeded for the demo data set.
var Cities = []string{"بغداد", "البصرة", "أربيل", "الموصل", "النجف", "كربلاء"}

var hospitalKinds = []string{"مستشفى الشفاء", "مستشفى الرحمة", "مستشفى ابن سينا", "مستشفى الكندي", "مستشفى اليرموك", "مدينة الطب"}

var firstNames = []string{"أحمد", "محمد", "علي", "حسين", "عمر", "زينب", "فاطمة", "مريم", "سارة", "نور", "حيدر", "يوسف", "رقية", "هدى", "كرار"}

var lastNames = []string{"الجبوري", "العبيدي", "الدليمي", "الربيعي", "التميمي", "الخفاجي", "الزبيدي", "الساعدي", "الموسوي", "الحسيني"}

var specializations = []string{"باطنية", "جراحة عامة", "أطفال", "نسائية وتوليد", "قلبية", "عظام", "جلدية", "أنف وأذن وحنجرة"}

var positions = []struct{ position, department string }{
	{"ممرض", "التمريض"},
	{"موظف استقبال", "الاستقبال"},
	{"فني مختبر", "المختبر"},
	{"صيدلاني", "الصيدلية"},
	{"محاسب", "الحسابات"},
}

var testNames = []string{"تحليل دم شامل", "سكر الدم", "وظائف الكلى", "وظائف الكبد", "تحليل البول", "أشعة الصدر", "تخطيط القلب", "سونار البطن"}

var diseaseNames = []string{"ارتفاع ضغط الدم", "السكري النوع الثاني", "التهاب اللوزتين", "فقر الدم", "الربو", "التهاب المعدة", "التهاب المفاصل"}

var treatmentNames = []string{"علاج طبيعي", "جلسة تبخير", "تضميد جرح", "حقن وريدي", "علاج بالأوكسجين"}

var operationNames = []string{"استئصال الزائدة", "استئصال المرارة", "عملية فتق", "تنظير المعدة", "عملية الساد"}

var medications = []struct{ name, dosage, frequency string }{
	{"باراسيتامول", "500mg", "ثلاث مرات يومياً"},
	{"أموكسيسيلين", "500mg", "مرتين يومياً"},
	{"ميتفورمين", "850mg", "مرتين يومياً"},
	{"أملوديبين", "5mg", "مرة يومياً"},
	{"أوميبرازول", "20mg", "مرة قبل الفطور"},
}

var categories = []string{"عام", "طوارئ", "تخصصي"}
